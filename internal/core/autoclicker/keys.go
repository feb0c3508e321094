package autoclicker

import "strings"

// ModifierMask is the device-independent modifier set of a key event. The
// bit values match the platform flags persisted by earlier releases.
type ModifierMask uint32

const (
	ModShift   ModifierMask = 1 << 17
	ModControl ModifierMask = 1 << 18
	ModOption  ModifierMask = 1 << 19
	ModCommand ModifierMask = 1 << 20

	deviceIndependentMask = ModControl | ModOption | ModShift | ModCommand
)

// DeviceIndependent drops every bit outside {control, option, shift, command}.
func (m ModifierMask) DeviceIndependent() ModifierMask {
	return m & deviceIndependentMask
}

// Glyphs renders the modifiers in control, option, shift, command order.
func (m ModifierMask) Glyphs() string {
	var b strings.Builder
	if m&ModControl != 0 {
		b.WriteString("⌃")
	}
	if m&ModOption != 0 {
		b.WriteString("⌥")
	}
	if m&ModShift != 0 {
		b.WriteString("⇧")
	}
	if m&ModCommand != 0 {
		b.WriteString("⌘")
	}
	return b.String()
}

// Canonical key codes. Adapters translate native events into this space.
const (
	KeyA            = 0
	KeyS            = 1
	KeyD            = 2
	KeyF            = 3
	KeyH            = 4
	KeyG            = 5
	KeyZ            = 6
	KeyX            = 7
	KeyC            = 8
	KeyV            = 9
	KeyB            = 11
	KeyQ            = 12
	KeyW            = 13
	KeyE            = 14
	KeyR            = 15
	KeyY            = 16
	KeyT            = 17
	Key1            = 18
	Key2            = 19
	Key3            = 20
	Key4            = 21
	Key6            = 22
	Key5            = 23
	KeyEqual        = 24
	Key9            = 25
	Key7            = 26
	KeyMinus        = 27
	Key8            = 28
	Key0            = 29
	KeyRightBracket = 30
	KeyO            = 31
	KeyU            = 32
	KeyLeftBracket  = 33
	KeyI            = 34
	KeyP            = 35
	KeyReturn       = 36
	KeyL            = 37
	KeyJ            = 38
	KeyQuote        = 39
	KeyK            = 40
	KeySemicolon    = 41
	KeyBackslash    = 42
	KeyComma        = 43
	KeySlash        = 44
	KeyN            = 45
	KeyM            = 46
	KeyPeriod       = 47
	KeyTab          = 48
	KeySpace        = 49
	KeyGrave        = 50
	KeyDelete       = 51
	KeyEscape       = 53

	KeyRightCommand = 54
	KeyCommand      = 55
	KeyShift        = 56
	KeyCapsLock     = 57
	KeyOption       = 58
	KeyControl      = 59
	KeyRightShift   = 60
	KeyRightOption  = 61
	KeyRightControl = 62
	KeyFunction     = 63

	KeyKeypadDecimal  = 65
	KeyKeypadMultiply = 67
	KeyKeypadPlus     = 69
	KeyKeypadClear    = 71
	KeyKeypadDivide   = 75
	KeyKeypadEnter    = 76
	KeyKeypadMinus    = 78
	KeyKeypadEquals   = 81
	KeyKeypad0        = 82
	KeyKeypad1        = 83
	KeyKeypad2        = 84
	KeyKeypad3        = 85
	KeyKeypad4        = 86
	KeyKeypad5        = 87
	KeyKeypad6        = 88
	KeyKeypad7        = 89
	KeyKeypad8        = 91
	KeyKeypad9        = 92

	KeyF9          = 96
	KeyF6          = 97
	KeyF7          = 98
	KeyF3          = 99
	KeyF8          = 100
	KeyF5          = 101
	KeyF11         = 103
	KeyF13         = 105
	KeyF14         = 107
	KeyF10         = 109
	KeyF12         = 111
	KeyF15         = 113
	KeyHome        = 115
	KeyPageUp      = 116
	KeyForwardDel  = 117
	KeyF4          = 118
	KeyEnd         = 119
	KeyF2          = 120
	KeyPageDown    = 121
	KeyF1          = 122
	KeyLeftArrow   = 123
	KeyRightArrow  = 124
	KeyDownArrow   = 125
	KeyUpArrow     = 126
	KeyF16         = 106
)

var keyNames = map[int]string{
	KeyA: "A", KeyS: "S", KeyD: "D", KeyF: "F", KeyH: "H", KeyG: "G", KeyZ: "Z", KeyX: "X",
	KeyC: "C", KeyV: "V", KeyB: "B", KeyQ: "Q", KeyW: "W", KeyE: "E", KeyR: "R",
	KeyY: "Y", KeyT: "T", Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key6: "6",
	Key5: "5", KeyEqual: "=", Key9: "9", Key7: "7", KeyMinus: "-", Key8: "8", Key0: "0",
	KeyRightBracket: "]", KeyO: "O", KeyU: "U", KeyLeftBracket: "[", KeyI: "I", KeyP: "P",
	KeyL: "L", KeyJ: "J", KeyQuote: "'", KeyK: "K", KeySemicolon: ";", KeyBackslash: "\\",
	KeyComma: ",", KeySlash: "/", KeyN: "N", KeyM: "M", KeyPeriod: ".", KeyGrave: "`",

	KeyKeypadDecimal: ".", KeyKeypadMultiply: "*", KeyKeypadPlus: "+", KeyKeypadClear: "Clear",
	KeyKeypadDivide: "/", KeyKeypadEnter: "Enter", KeyKeypadMinus: "-", KeyKeypadEquals: "=",
	KeyKeypad0: "0", KeyKeypad1: "1", KeyKeypad2: "2", KeyKeypad3: "3", KeyKeypad4: "4",
	KeyKeypad5: "5", KeyKeypad6: "6", KeyKeypad7: "7", KeyKeypad8: "8", KeyKeypad9: "9",

	KeyReturn: "Return", KeyTab: "Tab", KeySpace: "Space", KeyDelete: "Delete", KeyEscape: "Escape",

	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
	KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10", KeyF11: "F11", KeyF12: "F12",
	KeyF13: "F13", KeyF14: "F14", KeyF15: "F15", KeyF16: "F16",

	KeyLeftArrow: "←", KeyRightArrow: "→", KeyDownArrow: "↓", KeyUpArrow: "↑",
}

// KeyName returns the display name for a canonical key code, or "?".
func KeyName(code int) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return "?"
}

// IsReservedKey reports whether code is a modifier or system key that can
// never be recorded as a hotkey on its own.
func IsReservedKey(code int) bool {
	return code >= KeyRightCommand && code <= KeyFunction
}
