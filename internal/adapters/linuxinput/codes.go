//go:build linux

package linuxinput

import (
	"strconv"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"autoclick/internal/core/autoclicker"
)

var keyCodes = map[evdev.EvCode]int{
	evdev.KEY_A: autoclicker.KeyA, evdev.KEY_B: autoclicker.KeyB, evdev.KEY_C: autoclicker.KeyC,
	evdev.KEY_D: autoclicker.KeyD, evdev.KEY_E: autoclicker.KeyE, evdev.KEY_F: autoclicker.KeyF,
	evdev.KEY_G: autoclicker.KeyG, evdev.KEY_H: autoclicker.KeyH, evdev.KEY_I: autoclicker.KeyI,
	evdev.KEY_J: autoclicker.KeyJ, evdev.KEY_K: autoclicker.KeyK, evdev.KEY_L: autoclicker.KeyL,
	evdev.KEY_M: autoclicker.KeyM, evdev.KEY_N: autoclicker.KeyN, evdev.KEY_O: autoclicker.KeyO,
	evdev.KEY_P: autoclicker.KeyP, evdev.KEY_Q: autoclicker.KeyQ, evdev.KEY_R: autoclicker.KeyR,
	evdev.KEY_S: autoclicker.KeyS, evdev.KEY_T: autoclicker.KeyT, evdev.KEY_U: autoclicker.KeyU,
	evdev.KEY_V: autoclicker.KeyV, evdev.KEY_W: autoclicker.KeyW, evdev.KEY_X: autoclicker.KeyX,
	evdev.KEY_Y: autoclicker.KeyY, evdev.KEY_Z: autoclicker.KeyZ,

	evdev.KEY_1: autoclicker.Key1, evdev.KEY_2: autoclicker.Key2, evdev.KEY_3: autoclicker.Key3,
	evdev.KEY_4: autoclicker.Key4, evdev.KEY_5: autoclicker.Key5, evdev.KEY_6: autoclicker.Key6,
	evdev.KEY_7: autoclicker.Key7, evdev.KEY_8: autoclicker.Key8, evdev.KEY_9: autoclicker.Key9,
	evdev.KEY_0: autoclicker.Key0,

	evdev.KEY_MINUS:      autoclicker.KeyMinus,
	evdev.KEY_EQUAL:      autoclicker.KeyEqual,
	evdev.KEY_LEFTBRACE:  autoclicker.KeyLeftBracket,
	evdev.KEY_RIGHTBRACE: autoclicker.KeyRightBracket,
	evdev.KEY_SEMICOLON:  autoclicker.KeySemicolon,
	evdev.KEY_APOSTROPHE: autoclicker.KeyQuote,
	evdev.KEY_GRAVE:      autoclicker.KeyGrave,
	evdev.KEY_BACKSLASH:  autoclicker.KeyBackslash,
	evdev.KEY_COMMA:      autoclicker.KeyComma,
	evdev.KEY_DOT:        autoclicker.KeyPeriod,
	evdev.KEY_SLASH:      autoclicker.KeySlash,

	evdev.KEY_ENTER:     autoclicker.KeyReturn,
	evdev.KEY_TAB:       autoclicker.KeyTab,
	evdev.KEY_SPACE:     autoclicker.KeySpace,
	evdev.KEY_BACKSPACE: autoclicker.KeyDelete,
	evdev.KEY_ESC:       autoclicker.KeyEscape,
	evdev.KEY_DELETE:    autoclicker.KeyForwardDel,
	evdev.KEY_HOME:      autoclicker.KeyHome,
	evdev.KEY_END:       autoclicker.KeyEnd,
	evdev.KEY_PAGEUP:    autoclicker.KeyPageUp,
	evdev.KEY_PAGEDOWN:  autoclicker.KeyPageDown,
	evdev.KEY_LEFT:      autoclicker.KeyLeftArrow,
	evdev.KEY_RIGHT:     autoclicker.KeyRightArrow,
	evdev.KEY_UP:        autoclicker.KeyUpArrow,
	evdev.KEY_DOWN:      autoclicker.KeyDownArrow,

	evdev.KEY_F1: autoclicker.KeyF1, evdev.KEY_F2: autoclicker.KeyF2, evdev.KEY_F3: autoclicker.KeyF3,
	evdev.KEY_F4: autoclicker.KeyF4, evdev.KEY_F5: autoclicker.KeyF5, evdev.KEY_F6: autoclicker.KeyF6,
	evdev.KEY_F7: autoclicker.KeyF7, evdev.KEY_F8: autoclicker.KeyF8, evdev.KEY_F9: autoclicker.KeyF9,
	evdev.KEY_F10: autoclicker.KeyF10, evdev.KEY_F11: autoclicker.KeyF11, evdev.KEY_F12: autoclicker.KeyF12,
	evdev.KEY_F13: autoclicker.KeyF13, evdev.KEY_F14: autoclicker.KeyF14, evdev.KEY_F15: autoclicker.KeyF15,
	evdev.KEY_F16: autoclicker.KeyF16,

	evdev.KEY_KP0: autoclicker.KeyKeypad0, evdev.KEY_KP1: autoclicker.KeyKeypad1,
	evdev.KEY_KP2: autoclicker.KeyKeypad2, evdev.KEY_KP3: autoclicker.KeyKeypad3,
	evdev.KEY_KP4: autoclicker.KeyKeypad4, evdev.KEY_KP5: autoclicker.KeyKeypad5,
	evdev.KEY_KP6: autoclicker.KeyKeypad6, evdev.KEY_KP7: autoclicker.KeyKeypad7,
	evdev.KEY_KP8: autoclicker.KeyKeypad8, evdev.KEY_KP9: autoclicker.KeyKeypad9,
	evdev.KEY_KPDOT:      autoclicker.KeyKeypadDecimal,
	evdev.KEY_KPASTERISK: autoclicker.KeyKeypadMultiply,
	evdev.KEY_KPPLUS:     autoclicker.KeyKeypadPlus,
	evdev.KEY_KPMINUS:    autoclicker.KeyKeypadMinus,
	evdev.KEY_KPSLASH:    autoclicker.KeyKeypadDivide,
	evdev.KEY_KPENTER:    autoclicker.KeyKeypadEnter,
	evdev.KEY_KPEQUAL:    autoclicker.KeyKeypadEquals,
	evdev.KEY_NUMLOCK:    autoclicker.KeyKeypadClear,

	evdev.KEY_LEFTCTRL:   autoclicker.KeyControl,
	evdev.KEY_RIGHTCTRL:  autoclicker.KeyRightControl,
	evdev.KEY_LEFTSHIFT:  autoclicker.KeyShift,
	evdev.KEY_RIGHTSHIFT: autoclicker.KeyRightShift,
	evdev.KEY_LEFTALT:    autoclicker.KeyOption,
	evdev.KEY_RIGHTALT:   autoclicker.KeyRightOption,
	evdev.KEY_LEFTMETA:   autoclicker.KeyCommand,
	evdev.KEY_RIGHTMETA:  autoclicker.KeyRightCommand,
	evdev.KEY_CAPSLOCK:   autoclicker.KeyCapsLock,
}

var modifierKeys = map[evdev.EvCode]autoclicker.ModifierMask{
	evdev.KEY_LEFTCTRL:   autoclicker.ModControl,
	evdev.KEY_RIGHTCTRL:  autoclicker.ModControl,
	evdev.KEY_LEFTSHIFT:  autoclicker.ModShift,
	evdev.KEY_RIGHTSHIFT: autoclicker.ModShift,
	evdev.KEY_LEFTALT:    autoclicker.ModOption,
	evdev.KEY_RIGHTALT:   autoclicker.ModOption,
	evdev.KEY_LEFTMETA:   autoclicker.ModCommand,
	evdev.KEY_RIGHTMETA:  autoclicker.ModCommand,
}

var buttonCodes = map[evdev.EvCode]autoclicker.Button{
	evdev.BTN_LEFT:   autoclicker.ButtonLeft,
	evdev.BTN_RIGHT:  autoclicker.ButtonRight,
	evdev.BTN_MIDDLE: autoclicker.ButtonMiddle,
}

var injectCodes = map[autoclicker.Button]evdev.EvCode{
	autoclicker.ButtonLeft:   evdev.BTN_LEFT,
	autoclicker.ButtonRight:  evdev.BTN_RIGHT,
	autoclicker.ButtonMiddle: evdev.BTN_MIDDLE,
}

// CanonicalKey translates an evdev key code into the shared key code space.
func CanonicalKey(code evdev.EvCode) (int, bool) {
	key, ok := keyCodes[code]
	return key, ok
}

func FormatCodeName(code evdev.EvCode) string {
	name := evdev.CodeName(evdev.EV_KEY, code)
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}

// modifierState tracks held modifier keys per device. Left and right keys are
// counted separately so releasing one side keeps the other active.
type modifierState struct {
	mu   sync.Mutex
	held map[string]map[evdev.EvCode]struct{}
}

func newModifierState() *modifierState {
	return &modifierState{held: make(map[string]map[evdev.EvCode]struct{})}
}

// update records a key transition and reports whether code is a modifier.
func (m *modifierState) update(source string, code evdev.EvCode, value int32) bool {
	if _, ok := modifierKeys[code]; !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.held[source]
	if keys == nil {
		keys = make(map[evdev.EvCode]struct{})
		m.held[source] = keys
	}
	if value == 0 {
		delete(keys, code)
	} else {
		keys[code] = struct{}{}
	}
	return true
}

// mask merges modifiers across devices so a modifier on one keyboard applies
// to a key pressed on another.
func (m *modifierState) mask() autoclicker.ModifierMask {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mask autoclicker.ModifierMask
	for _, keys := range m.held {
		for code := range keys {
			mask |= modifierKeys[code]
		}
	}
	return mask
}

func (m *modifierState) forget(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, source)
}
