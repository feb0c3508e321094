//go:build linux

package linuxinput

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"

	"autoclick/internal/core/autoclicker"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func key(code evdev.EvCode, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}
}

func TestDispatcherTranslatesKeysWithModifiers(t *testing.T) {
	d := newDispatcher(noopLogger{})
	var got []autoclicker.KeyEvent
	d.MonitorKeys(func(ev autoclicker.KeyEvent) { got = append(got, ev) })

	d.handleEvent("kbd", key(evdev.KEY_LEFTMETA, 1))
	d.handleEvent("kbd", key(evdev.KEY_F9, 1))
	d.handleEvent("kbd", key(evdev.KEY_F9, 2))
	d.handleEvent("kbd", key(evdev.KEY_F9, 0))
	d.handleEvent("kbd", key(evdev.KEY_LEFTMETA, 0))
	d.handleEvent("kbd", key(evdev.KEY_F9, 1))

	want := []autoclicker.KeyEvent{
		{KeyCode: autoclicker.KeyF9, Modifiers: autoclicker.ModCommand},
		{KeyCode: autoclicker.KeyF9},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events %+v, want %+v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDispatcherKeepsModifierWhileOtherSideHeld(t *testing.T) {
	d := newDispatcher(noopLogger{})
	var last autoclicker.KeyEvent
	d.MonitorKeys(func(ev autoclicker.KeyEvent) { last = ev })

	d.handleEvent("kbd", key(evdev.KEY_LEFTSHIFT, 1))
	d.handleEvent("kbd", key(evdev.KEY_RIGHTSHIFT, 1))
	d.handleEvent("kbd", key(evdev.KEY_LEFTSHIFT, 0))
	d.handleEvent("other", key(evdev.KEY_LEFTCTRL, 1))
	d.handleEvent("kbd", key(evdev.KEY_A, 1))

	want := autoclicker.KeyEvent{KeyCode: autoclicker.KeyA, Modifiers: autoclicker.ModShift | autoclicker.ModControl}
	if last != want {
		t.Fatalf("event = %+v, want %+v", last, want)
	}

	d.dropSource("other")
	d.handleEvent("kbd", key(evdev.KEY_A, 1))
	if last.Modifiers != autoclicker.ModShift {
		t.Fatalf("modifiers after device removal = %#x", uint32(last.Modifiers))
	}
}

func TestDispatcherButtonsAndRemoval(t *testing.T) {
	d := newDispatcher(noopLogger{})
	var presses []autoclicker.Button
	m := d.MonitorPresses(func(b autoclicker.Button) { presses = append(presses, b) })

	d.handleEvent("mouse", key(evdev.BTN_LEFT, 1))
	d.handleEvent("mouse", key(evdev.BTN_LEFT, 0))
	d.handleEvent("mouse", key(evdev.BTN_RIGHT, 1))
	d.handleEvent("mouse", evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_X, Value: 4})
	m.Remove()
	m.Remove()
	d.handleEvent("mouse", key(evdev.BTN_MIDDLE, 1))

	if len(presses) != 2 || presses[0] != autoclicker.ButtonLeft || presses[1] != autoclicker.ButtonRight {
		t.Fatalf("presses = %v", presses)
	}
}

func TestCanonicalKeyTable(t *testing.T) {
	cases := map[evdev.EvCode]int{
		evdev.KEY_ESC:     autoclicker.KeyEscape,
		evdev.KEY_F9:      autoclicker.KeyF9,
		evdev.KEY_ENTER:   autoclicker.KeyReturn,
		evdev.KEY_KPENTER: autoclicker.KeyKeypadEnter,
		evdev.KEY_LEFT:    autoclicker.KeyLeftArrow,
		evdev.KEY_F16:     autoclicker.KeyF16,
	}
	for code, want := range cases {
		got, ok := CanonicalKey(code)
		if !ok || got != want {
			t.Fatalf("CanonicalKey(%s) = %d, %v, want %d", FormatCodeName(code), got, ok, want)
		}
	}
	for code := range modifierKeys {
		got, ok := CanonicalKey(code)
		if !ok || !autoclicker.IsReservedKey(got) {
			t.Fatalf("modifier %s maps to non-reserved key %d", FormatCodeName(code), got)
		}
	}
}
