package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"autoclick/internal/core/autoclicker"
)

var fyneKeys = map[fyne.KeyName]int{
	fyne.KeyA: autoclicker.KeyA, fyne.KeyB: autoclicker.KeyB, fyne.KeyC: autoclicker.KeyC,
	fyne.KeyD: autoclicker.KeyD, fyne.KeyE: autoclicker.KeyE, fyne.KeyF: autoclicker.KeyF,
	fyne.KeyG: autoclicker.KeyG, fyne.KeyH: autoclicker.KeyH, fyne.KeyI: autoclicker.KeyI,
	fyne.KeyJ: autoclicker.KeyJ, fyne.KeyK: autoclicker.KeyK, fyne.KeyL: autoclicker.KeyL,
	fyne.KeyM: autoclicker.KeyM, fyne.KeyN: autoclicker.KeyN, fyne.KeyO: autoclicker.KeyO,
	fyne.KeyP: autoclicker.KeyP, fyne.KeyQ: autoclicker.KeyQ, fyne.KeyR: autoclicker.KeyR,
	fyne.KeyS: autoclicker.KeyS, fyne.KeyT: autoclicker.KeyT, fyne.KeyU: autoclicker.KeyU,
	fyne.KeyV: autoclicker.KeyV, fyne.KeyW: autoclicker.KeyW, fyne.KeyX: autoclicker.KeyX,
	fyne.KeyY: autoclicker.KeyY, fyne.KeyZ: autoclicker.KeyZ,

	fyne.Key0: autoclicker.Key0, fyne.Key1: autoclicker.Key1, fyne.Key2: autoclicker.Key2,
	fyne.Key3: autoclicker.Key3, fyne.Key4: autoclicker.Key4, fyne.Key5: autoclicker.Key5,
	fyne.Key6: autoclicker.Key6, fyne.Key7: autoclicker.Key7, fyne.Key8: autoclicker.Key8,
	fyne.Key9: autoclicker.Key9,

	fyne.KeyMinus:        autoclicker.KeyMinus,
	fyne.KeyEqual:        autoclicker.KeyEqual,
	fyne.KeyLeftBracket:  autoclicker.KeyLeftBracket,
	fyne.KeyRightBracket: autoclicker.KeyRightBracket,
	fyne.KeySemicolon:    autoclicker.KeySemicolon,
	fyne.KeyApostrophe:   autoclicker.KeyQuote,
	fyne.KeyBackTick:     autoclicker.KeyGrave,
	fyne.KeyBackslash:    autoclicker.KeyBackslash,
	fyne.KeyComma:        autoclicker.KeyComma,
	fyne.KeyPeriod:       autoclicker.KeyPeriod,
	fyne.KeySlash:        autoclicker.KeySlash,

	fyne.KeyReturn:    autoclicker.KeyReturn,
	fyne.KeyTab:       autoclicker.KeyTab,
	fyne.KeySpace:     autoclicker.KeySpace,
	fyne.KeyBackspace: autoclicker.KeyDelete,
	fyne.KeyEscape:    autoclicker.KeyEscape,
	fyne.KeyDelete:    autoclicker.KeyForwardDel,
	fyne.KeyHome:      autoclicker.KeyHome,
	fyne.KeyEnd:       autoclicker.KeyEnd,
	fyne.KeyPageUp:    autoclicker.KeyPageUp,
	fyne.KeyPageDown:  autoclicker.KeyPageDown,
	fyne.KeyLeft:      autoclicker.KeyLeftArrow,
	fyne.KeyRight:     autoclicker.KeyRightArrow,
	fyne.KeyUp:        autoclicker.KeyUpArrow,
	fyne.KeyDown:      autoclicker.KeyDownArrow,

	fyne.KeyF1: autoclicker.KeyF1, fyne.KeyF2: autoclicker.KeyF2, fyne.KeyF3: autoclicker.KeyF3,
	fyne.KeyF4: autoclicker.KeyF4, fyne.KeyF5: autoclicker.KeyF5, fyne.KeyF6: autoclicker.KeyF6,
	fyne.KeyF7: autoclicker.KeyF7, fyne.KeyF8: autoclicker.KeyF8, fyne.KeyF9: autoclicker.KeyF9,
	fyne.KeyF10: autoclicker.KeyF10, fyne.KeyF11: autoclicker.KeyF11, fyne.KeyF12: autoclicker.KeyF12,

	fyne.KeyEnter:    autoclicker.KeyKeypadEnter,
	fyne.KeyAsterisk: autoclicker.KeyKeypadMultiply,
	fyne.KeyPlus:     autoclicker.KeyKeypadPlus,

	desktop.KeyShiftLeft:    autoclicker.KeyShift,
	desktop.KeyShiftRight:   autoclicker.KeyRightShift,
	desktop.KeyControlLeft:  autoclicker.KeyControl,
	desktop.KeyControlRight: autoclicker.KeyRightControl,
	desktop.KeyAltLeft:      autoclicker.KeyOption,
	desktop.KeyAltRight:     autoclicker.KeyRightOption,
	desktop.KeySuperLeft:    autoclicker.KeyCommand,
	desktop.KeySuperRight:   autoclicker.KeyRightCommand,
	desktop.KeyCapsLock:     autoclicker.KeyCapsLock,
}

// modifierKeys maps held modifier keys to their mask bit. Super is the
// command key on macOS and the logo key elsewhere.
var modifierKeys = map[fyne.KeyName]autoclicker.ModifierMask{
	desktop.KeyShiftLeft:    autoclicker.ModShift,
	desktop.KeyShiftRight:   autoclicker.ModShift,
	desktop.KeyControlLeft:  autoclicker.ModControl,
	desktop.KeyControlRight: autoclicker.ModControl,
	desktop.KeyAltLeft:      autoclicker.ModOption,
	desktop.KeyAltRight:     autoclicker.ModOption,
	desktop.KeySuperLeft:    autoclicker.ModCommand,
	desktop.KeySuperRight:   autoclicker.ModCommand,
}

func canonicalKey(name fyne.KeyName) (int, bool) {
	key, ok := fyneKeys[name]
	return key, ok
}
