package autoclicker

import "testing"

func TestFormatBindingModifierOrder(t *testing.T) {
	all := ModCommand | ModShift | ModOption | ModControl
	if got := FormatBinding(KeyA, all); got != "⌃⌥⇧⌘A" {
		t.Fatalf("FormatBinding() = %q, want %q", got, "⌃⌥⇧⌘A")
	}
	if got := FormatBinding(KeyF9, 0); got != "F9" {
		t.Fatalf("FormatBinding() = %q, want %q", got, "F9")
	}
}

func TestKeyNameCoversNamedKeys(t *testing.T) {
	cases := map[int]string{
		KeyReturn:      "Return",
		KeyTab:         "Tab",
		KeySpace:       "Space",
		KeyDelete:      "Delete",
		KeyEscape:      "Escape",
		KeyLeftArrow:   "←",
		KeyUpArrow:     "↑",
		KeyKeypadEnter: "Enter",
		KeyKeypad7:     "7",
		KeyF1:          "F1",
		KeyF16:         "F16",
		Key0:           "0",
		KeyBackslash:   "\\",
	}
	for code, want := range cases {
		if got := KeyName(code); got != want {
			t.Fatalf("KeyName(%d) = %q, want %q", code, got, want)
		}
	}
	if got := KeyName(200); got != "?" {
		t.Fatalf("KeyName(200) = %q, want %q", got, "?")
	}
}

func TestFunctionKeysOneToSixteenAreNamed(t *testing.T) {
	codes := []int{KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8,
		KeyF9, KeyF10, KeyF11, KeyF12, KeyF13, KeyF14, KeyF15, KeyF16}
	seen := make(map[string]bool)
	for _, code := range codes {
		name := KeyName(code)
		if name == "?" || seen[name] {
			t.Fatalf("function key %d has name %q", code, name)
		}
		seen[name] = true
	}
}

func TestReservedKeys(t *testing.T) {
	for code := KeyRightCommand; code <= KeyFunction; code++ {
		if !IsReservedKey(code) {
			t.Fatalf("IsReservedKey(%d) = false", code)
		}
	}
	for _, code := range []int{KeyEscape, KeyF9, KeyA, KeyKeypadDecimal} {
		if IsReservedKey(code) {
			t.Fatalf("IsReservedKey(%d) = true", code)
		}
	}
}

func TestDeviceIndependentDropsOtherBits(t *testing.T) {
	mask := ModControl | ModCommand | 1<<16 | 1<<23 | 0xff
	if got := mask.DeviceIndependent(); got != ModControl|ModCommand {
		t.Fatalf("DeviceIndependent() = %#x", uint32(got))
	}
}

func TestParseLabelsAcceptLegacyValues(t *testing.T) {
	if b, ok := ParseButton("右键"); !ok || b != ButtonRight {
		t.Fatalf("ParseButton(legacy) = %v, %v", b, ok)
	}
	if u, ok := ParseIntervalUnit("秒"); !ok || u != UnitSeconds {
		t.Fatalf("ParseIntervalUnit(legacy) = %v, %v", u, ok)
	}
	if m, ok := ParsePositionMode("指定位置"); !ok || m != PositionFixed {
		t.Fatalf("ParsePositionMode(legacy) = %v, %v", m, ok)
	}
	if _, ok := ParseButton("thumb"); ok {
		t.Fatalf("ParseButton accepted an unknown label")
	}
	for _, b := range []Button{ButtonLeft, ButtonRight, ButtonMiddle} {
		if got, ok := ParseButton(b.String()); !ok || got != b {
			t.Fatalf("ParseButton(%q) = %v, %v", b.String(), got, ok)
		}
	}
}
