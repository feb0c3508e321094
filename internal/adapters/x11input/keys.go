package x11input

import (
	"strings"

	"autoclick/internal/core/autoclicker"
)

// Core X11 modifier state bits.
const (
	stateShift   uint16 = 1 << 0
	stateLock    uint16 = 1 << 1
	stateControl uint16 = 1 << 2
	stateMod1    uint16 = 1 << 3
	stateMod2    uint16 = 1 << 4
	stateMod4    uint16 = 1 << 6
)

// lockVariants are the lock states a grab must tolerate so the hotkey still
// fires with caps lock or num lock on.
var lockVariants = []uint16{0, stateLock, stateMod2, stateLock | stateMod2}

var keysyms = map[int]string{
	autoclicker.KeyA: "a", autoclicker.KeyB: "b", autoclicker.KeyC: "c", autoclicker.KeyD: "d",
	autoclicker.KeyE: "e", autoclicker.KeyF: "f", autoclicker.KeyG: "g", autoclicker.KeyH: "h",
	autoclicker.KeyI: "i", autoclicker.KeyJ: "j", autoclicker.KeyK: "k", autoclicker.KeyL: "l",
	autoclicker.KeyM: "m", autoclicker.KeyN: "n", autoclicker.KeyO: "o", autoclicker.KeyP: "p",
	autoclicker.KeyQ: "q", autoclicker.KeyR: "r", autoclicker.KeyS: "s", autoclicker.KeyT: "t",
	autoclicker.KeyU: "u", autoclicker.KeyV: "v", autoclicker.KeyW: "w", autoclicker.KeyX: "x",
	autoclicker.KeyY: "y", autoclicker.KeyZ: "z",

	autoclicker.Key0: "0", autoclicker.Key1: "1", autoclicker.Key2: "2", autoclicker.Key3: "3",
	autoclicker.Key4: "4", autoclicker.Key5: "5", autoclicker.Key6: "6", autoclicker.Key7: "7",
	autoclicker.Key8: "8", autoclicker.Key9: "9",

	autoclicker.KeyMinus:        "minus",
	autoclicker.KeyEqual:        "equal",
	autoclicker.KeyLeftBracket:  "bracketleft",
	autoclicker.KeyRightBracket: "bracketright",
	autoclicker.KeySemicolon:    "semicolon",
	autoclicker.KeyQuote:        "apostrophe",
	autoclicker.KeyGrave:        "grave",
	autoclicker.KeyBackslash:    "backslash",
	autoclicker.KeyComma:        "comma",
	autoclicker.KeyPeriod:       "period",
	autoclicker.KeySlash:        "slash",

	autoclicker.KeyReturn:     "Return",
	autoclicker.KeyTab:        "Tab",
	autoclicker.KeySpace:      "space",
	autoclicker.KeyDelete:     "BackSpace",
	autoclicker.KeyEscape:     "Escape",
	autoclicker.KeyForwardDel: "Delete",
	autoclicker.KeyHome:       "Home",
	autoclicker.KeyEnd:        "End",
	autoclicker.KeyPageUp:     "Page_Up",
	autoclicker.KeyPageDown:   "Page_Down",
	autoclicker.KeyLeftArrow:  "Left",
	autoclicker.KeyRightArrow: "Right",
	autoclicker.KeyUpArrow:    "Up",
	autoclicker.KeyDownArrow:  "Down",

	autoclicker.KeyF1: "F1", autoclicker.KeyF2: "F2", autoclicker.KeyF3: "F3", autoclicker.KeyF4: "F4",
	autoclicker.KeyF5: "F5", autoclicker.KeyF6: "F6", autoclicker.KeyF7: "F7", autoclicker.KeyF8: "F8",
	autoclicker.KeyF9: "F9", autoclicker.KeyF10: "F10", autoclicker.KeyF11: "F11", autoclicker.KeyF12: "F12",
	autoclicker.KeyF13: "F13", autoclicker.KeyF14: "F14", autoclicker.KeyF15: "F15", autoclicker.KeyF16: "F16",

	autoclicker.KeyKeypad0: "KP_0", autoclicker.KeyKeypad1: "KP_1", autoclicker.KeyKeypad2: "KP_2",
	autoclicker.KeyKeypad3: "KP_3", autoclicker.KeyKeypad4: "KP_4", autoclicker.KeyKeypad5: "KP_5",
	autoclicker.KeyKeypad6: "KP_6", autoclicker.KeyKeypad7: "KP_7", autoclicker.KeyKeypad8: "KP_8",
	autoclicker.KeyKeypad9: "KP_9",
	autoclicker.KeyKeypadDecimal:  "KP_Decimal",
	autoclicker.KeyKeypadMultiply: "KP_Multiply",
	autoclicker.KeyKeypadPlus:     "KP_Add",
	autoclicker.KeyKeypadMinus:    "KP_Subtract",
	autoclicker.KeyKeypadDivide:   "KP_Divide",
	autoclicker.KeyKeypadEnter:    "KP_Enter",
	autoclicker.KeyKeypadEquals:   "KP_Equal",
	autoclicker.KeyKeypadClear:    "Num_Lock",

	autoclicker.KeyShift:        "Shift_L",
	autoclicker.KeyRightShift:   "Shift_R",
	autoclicker.KeyControl:      "Control_L",
	autoclicker.KeyRightControl: "Control_R",
	autoclicker.KeyOption:       "Alt_L",
	autoclicker.KeyRightOption:  "Alt_R",
	autoclicker.KeyCommand:      "Super_L",
	autoclicker.KeyRightCommand: "Super_R",
	autoclicker.KeyCapsLock:     "Caps_Lock",
}

var keysymToKey = func() map[string]int {
	out := make(map[string]int, len(keysyms))
	for key, name := range keysyms {
		out[strings.ToLower(name)] = key
	}
	return out
}()

// KeysymName returns the X keysym name for a key code.
func KeysymName(key int) (string, bool) {
	name, ok := keysyms[key]
	return name, ok
}

// KeyFromKeysym maps a keysym name, as returned by keybind.LookupString, back
// to a key code. Matching ignores case so shifted letters resolve too.
func KeyFromKeysym(name string) (int, bool) {
	key, ok := keysymToKey[strings.ToLower(strings.TrimSpace(name))]
	return key, ok
}

// ModifiersFromState converts a core event state into a modifier mask.
// Lock bits are dropped.
func ModifiersFromState(state uint16) autoclicker.ModifierMask {
	var mask autoclicker.ModifierMask
	if state&stateShift != 0 {
		mask |= autoclicker.ModShift
	}
	if state&stateControl != 0 {
		mask |= autoclicker.ModControl
	}
	if state&stateMod1 != 0 {
		mask |= autoclicker.ModOption
	}
	if state&stateMod4 != 0 {
		mask |= autoclicker.ModCommand
	}
	return mask
}

// StateFromModifiers is the inverse of ModifiersFromState.
func StateFromModifiers(mask autoclicker.ModifierMask) uint16 {
	var state uint16
	if mask&autoclicker.ModShift != 0 {
		state |= stateShift
	}
	if mask&autoclicker.ModControl != 0 {
		state |= stateControl
	}
	if mask&autoclicker.ModOption != 0 {
		state |= stateMod1
	}
	if mask&autoclicker.ModCommand != 0 {
		state |= stateMod4
	}
	return state
}

// buttonIndex maps a button to its core X11 button number.
func buttonIndex(button autoclicker.Button) byte {
	switch button {
	case autoclicker.ButtonMiddle:
		return 2
	case autoclicker.ButtonRight:
		return 3
	default:
		return 1
	}
}

func buttonFromIndex(index byte) (autoclicker.Button, bool) {
	switch index {
	case 1:
		return autoclicker.ButtonLeft, true
	case 2:
		return autoclicker.ButtonMiddle, true
	case 3:
		return autoclicker.ButtonRight, true
	}
	return autoclicker.ButtonLeft, false
}

func clampToInt16(value float64) int16 {
	if value < -32768 {
		return -32768
	}
	if value > 32767 {
		return 32767
	}
	return int16(value)
}
