package hookinput

import "autoclick/internal/core/autoclicker"

// Key codes reported by the hook in Event.Keycode. They follow the
// set-1 scancode layout, with extended keys carrying a 0x0E or 0xE0 prefix.
const (
	vcEscape    = 0x0001
	vcBackspace = 0x000E
	vcTab       = 0x000F
	vcEnter     = 0x001C
	vcSpace     = 0x0039
	vcCapsLock  = 0x003A
	vcNumLock   = 0x0045

	vcShiftL   = 0x002A
	vcShiftR   = 0x0036
	vcControlL = 0x001D
	vcControlR = 0x0E1D
	vcAltL     = 0x0038
	vcAltR     = 0x0E38
	vcMetaL    = 0x0E5B
	vcMetaR    = 0x0E5C
)

// Event.Mask bits.
const (
	maskShiftL = 1 << 0
	maskCtrlL  = 1 << 1
	maskMetaL  = 1 << 2
	maskAltL   = 1 << 3
	maskShiftR = 1 << 4
	maskCtrlR  = 1 << 5
	maskMetaR  = 1 << 6
	maskAltR   = 1 << 7
)

// Event.Button values.
const (
	hookButtonLeft   = 1
	hookButtonRight  = 2
	hookButtonMiddle = 3
)

var keyCodes = map[uint16]int{
	0x001E: autoclicker.KeyA, 0x0030: autoclicker.KeyB, 0x002E: autoclicker.KeyC,
	0x0020: autoclicker.KeyD, 0x0012: autoclicker.KeyE, 0x0021: autoclicker.KeyF,
	0x0022: autoclicker.KeyG, 0x0023: autoclicker.KeyH, 0x0017: autoclicker.KeyI,
	0x0024: autoclicker.KeyJ, 0x0025: autoclicker.KeyK, 0x0026: autoclicker.KeyL,
	0x0032: autoclicker.KeyM, 0x0031: autoclicker.KeyN, 0x0018: autoclicker.KeyO,
	0x0019: autoclicker.KeyP, 0x0010: autoclicker.KeyQ, 0x0013: autoclicker.KeyR,
	0x001F: autoclicker.KeyS, 0x0014: autoclicker.KeyT, 0x0016: autoclicker.KeyU,
	0x002F: autoclicker.KeyV, 0x0011: autoclicker.KeyW, 0x002D: autoclicker.KeyX,
	0x0015: autoclicker.KeyY, 0x002C: autoclicker.KeyZ,

	0x0002: autoclicker.Key1, 0x0003: autoclicker.Key2, 0x0004: autoclicker.Key3,
	0x0005: autoclicker.Key4, 0x0006: autoclicker.Key5, 0x0007: autoclicker.Key6,
	0x0008: autoclicker.Key7, 0x0009: autoclicker.Key8, 0x000A: autoclicker.Key9,
	0x000B: autoclicker.Key0,

	0x000C: autoclicker.KeyMinus,
	0x000D: autoclicker.KeyEqual,
	0x001A: autoclicker.KeyLeftBracket,
	0x001B: autoclicker.KeyRightBracket,
	0x0027: autoclicker.KeySemicolon,
	0x0028: autoclicker.KeyQuote,
	0x0029: autoclicker.KeyGrave,
	0x002B: autoclicker.KeyBackslash,
	0x0033: autoclicker.KeyComma,
	0x0034: autoclicker.KeyPeriod,
	0x0035: autoclicker.KeySlash,

	vcEnter:     autoclicker.KeyReturn,
	vcTab:       autoclicker.KeyTab,
	vcSpace:     autoclicker.KeySpace,
	vcBackspace: autoclicker.KeyDelete,
	vcEscape:    autoclicker.KeyEscape,
	0x0E53:      autoclicker.KeyForwardDel,
	0x0E47:      autoclicker.KeyHome,
	0x0E4F:      autoclicker.KeyEnd,
	0x0E49:      autoclicker.KeyPageUp,
	0x0E51:      autoclicker.KeyPageDown,
	0xE04B:      autoclicker.KeyLeftArrow,
	0xE04D:      autoclicker.KeyRightArrow,
	0xE048:      autoclicker.KeyUpArrow,
	0xE050:      autoclicker.KeyDownArrow,

	0x003B: autoclicker.KeyF1, 0x003C: autoclicker.KeyF2, 0x003D: autoclicker.KeyF3,
	0x003E: autoclicker.KeyF4, 0x003F: autoclicker.KeyF5, 0x0040: autoclicker.KeyF6,
	0x0041: autoclicker.KeyF7, 0x0042: autoclicker.KeyF8, 0x0043: autoclicker.KeyF9,
	0x0044: autoclicker.KeyF10, 0x0057: autoclicker.KeyF11, 0x0058: autoclicker.KeyF12,
	0x005B: autoclicker.KeyF13, 0x005C: autoclicker.KeyF14, 0x005D: autoclicker.KeyF15,
	0x0063: autoclicker.KeyF16,

	0x0052: autoclicker.KeyKeypad0, 0x004F: autoclicker.KeyKeypad1,
	0x0050: autoclicker.KeyKeypad2, 0x0051: autoclicker.KeyKeypad3,
	0x004B: autoclicker.KeyKeypad4, 0x004C: autoclicker.KeyKeypad5,
	0x004D: autoclicker.KeyKeypad6, 0x0047: autoclicker.KeyKeypad7,
	0x0048: autoclicker.KeyKeypad8, 0x0049: autoclicker.KeyKeypad9,
	0x0053:    autoclicker.KeyKeypadDecimal,
	0x0037:    autoclicker.KeyKeypadMultiply,
	0x004E:    autoclicker.KeyKeypadPlus,
	0x004A:    autoclicker.KeyKeypadMinus,
	0x0E35:    autoclicker.KeyKeypadDivide,
	0x0E1C:    autoclicker.KeyKeypadEnter,
	0x0E0D:    autoclicker.KeyKeypadEquals,
	vcNumLock: autoclicker.KeyKeypadClear,

	vcControlL: autoclicker.KeyControl,
	vcControlR: autoclicker.KeyRightControl,
	vcShiftL:   autoclicker.KeyShift,
	vcShiftR:   autoclicker.KeyRightShift,
	vcAltL:     autoclicker.KeyOption,
	vcAltR:     autoclicker.KeyRightOption,
	vcMetaL:    autoclicker.KeyCommand,
	vcMetaR:    autoclicker.KeyRightCommand,
	vcCapsLock: autoclicker.KeyCapsLock,
}

// CanonicalKey translates a hook key code into the shared key space.
func CanonicalKey(code uint16) (int, bool) {
	key, ok := keyCodes[code]
	return key, ok
}

// ModifiersFromMask folds left and right variants into one modifier each.
// Alt maps to option and meta to command.
func ModifiersFromMask(mask uint16) autoclicker.ModifierMask {
	var mods autoclicker.ModifierMask
	if mask&(maskShiftL|maskShiftR) != 0 {
		mods |= autoclicker.ModShift
	}
	if mask&(maskCtrlL|maskCtrlR) != 0 {
		mods |= autoclicker.ModControl
	}
	if mask&(maskAltL|maskAltR) != 0 {
		mods |= autoclicker.ModOption
	}
	if mask&(maskMetaL|maskMetaR) != 0 {
		mods |= autoclicker.ModCommand
	}
	return mods
}

func buttonFromHook(button uint16) (autoclicker.Button, bool) {
	switch button {
	case hookButtonLeft:
		return autoclicker.ButtonLeft, true
	case hookButtonRight:
		return autoclicker.ButtonRight, true
	case hookButtonMiddle:
		return autoclicker.ButtonMiddle, true
	}
	return autoclicker.ButtonLeft, false
}

// buttonName is the robotgo name for button.
func buttonName(button autoclicker.Button) string {
	switch button {
	case autoclicker.ButtonRight:
		return "right"
	case autoclicker.ButtonMiddle:
		return "center"
	default:
		return "left"
	}
}

// heldKeys suppresses autorepeat: a key is delivered once until released.
type heldKeys map[uint16]struct{}

func (h heldKeys) press(code uint16) bool {
	if _, ok := h[code]; ok {
		return false
	}
	h[code] = struct{}{}
	return true
}

func (h heldKeys) release(code uint16) {
	delete(h, code)
}
