package autoclicker

import (
	"errors"
	"testing"
)

type pickerFixture struct {
	controller *Controller
	picker     *Picker
	exec       *manualExecutor
	surface    *fakeSurface
	global     *fakeMonitors
	local      *fakeMonitors
}

func newPickerFixture(t *testing.T) *pickerFixture {
	t.Helper()
	f := &pickerFixture{
		exec:    &manualExecutor{},
		surface: &fakeSurface{},
		global:  newFakeMonitors(),
		local:   newFakeMonitors(),
	}
	// (100, 600) bottom-left on an 800px screen is (100, 200) top-left.
	pointer := fakePointer{location: Point{X: 100, Y: 600}, height: 800}

	settings := DefaultSettings()
	settings.PositionMode = PositionFixed
	settings.FixedX = 7
	settings.FixedY = 9

	controller, err := NewController(Config{
		Executor: f.exec,
		Injector: &recordingInjector{},
		Pointer:  pointer,
		Store:    NewMemoryStore(settings, DefaultBinding()),
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	picker, err := NewPicker(PickerConfig{
		Executor: f.exec,
		Surface:  f.surface,
		Pointer:  pointer,
		Global:   fakeGlobal{f.global},
		Local:    fakeLocal{f.local},
		Logger:   noopLogger{},
	})
	if err != nil {
		t.Fatalf("NewPicker() error = %v", err)
	}
	f.controller = controller
	f.picker = picker
	return f
}

func (f *pickerFixture) open(t *testing.T) {
	t.Helper()
	if err := f.controller.PickPosition(f.picker); err != nil {
		t.Fatalf("PickPosition() error = %v", err)
	}
	if !f.controller.Snapshot().Picking {
		t.Fatalf("expected snapshot to report picking")
	}
	// Overlay appears only after the show delay.
	if f.global.live() != 0 || f.local.live() != 0 {
		t.Fatalf("listeners registered before the overlay was shown")
	}
	f.exec.fireAfters()
	if f.global.live() != 1 || f.local.live() != 2 {
		t.Fatalf("unexpected listeners: global=%d local=%d", f.global.live(), f.local.live())
	}
}

func TestPickerPrimaryPressStoresTopLeftPoint(t *testing.T) {
	f := newPickerFixture(t)
	f.open(t)

	if f.local.sendPress(ButtonRight) {
		t.Fatalf("secondary press must not be consumed")
	}
	if !f.local.sendPress(ButtonLeft) {
		t.Fatalf("primary press not consumed")
	}

	got := f.controller.Settings()
	if got.FixedX != 100 || got.FixedY != 200 {
		t.Fatalf("fixed position = (%v, %v), want (100, 200)", got.FixedX, got.FixedY)
	}
	if f.controller.Snapshot().Picking || f.picker.Active() {
		t.Fatalf("picker still active after pick")
	}

	f.exec.fireAfters()
	want := []string{"hideMain", "showOverlay", "hideOverlay", "showMain"}
	if len(f.surface.calls) != len(want) {
		t.Fatalf("surface calls = %v, want %v", f.surface.calls, want)
	}
	for i := range want {
		if f.surface.calls[i] != want[i] {
			t.Fatalf("surface calls = %v, want %v", f.surface.calls, want)
		}
	}
}

func TestPickerEscapeLeavesPositionUnchanged(t *testing.T) {
	f := newPickerFixture(t)
	f.open(t)

	if !f.local.sendKey(KeyEvent{KeyCode: KeyEscape}) {
		t.Fatalf("escape not consumed")
	}

	got := f.controller.Settings()
	if got.FixedX != 7 || got.FixedY != 9 {
		t.Fatalf("fixed position changed to (%v, %v)", got.FixedX, got.FixedY)
	}
	if f.controller.Snapshot().Picking {
		t.Fatalf("picking still reported after cancel")
	}
}

func TestPickerGlobalPressIsPostedToExecutor(t *testing.T) {
	f := newPickerFixture(t)
	f.open(t)

	f.global.sendPress(ButtonLeft)
	if got := f.controller.Settings().FixedX; got != 7 {
		t.Fatalf("global press applied inside the event callback")
	}

	f.exec.runPosted()
	if got := f.controller.Settings(); got.FixedX != 100 || got.FixedY != 200 {
		t.Fatalf("fixed position = (%v, %v), want (100, 200)", got.FixedX, got.FixedY)
	}
}

func TestPickerTeardownRemovesListenersExactlyOnce(t *testing.T) {
	f := newPickerFixture(t)
	f.open(t)

	f.global.sendPress(ButtonLeft)
	f.local.sendPress(ButtonLeft)
	f.exec.runPosted()
	f.picker.Cancel()

	if f.global.live() != 0 || f.local.live() != 0 {
		t.Fatalf("listeners left: global=%d local=%d", f.global.live(), f.local.live())
	}
	if f.global.removed() != 1 || f.local.removed() != 2 {
		t.Fatalf("unexpected removals: global=%d local=%d", f.global.removed(), f.local.removed())
	}
	hides := 0
	for _, call := range f.surface.calls {
		if call == "hideOverlay" {
			hides++
		}
	}
	if hides != 1 {
		t.Fatalf("overlay hidden %d times, want 1", hides)
	}
}

func TestPickerCancelBeforeOverlayShown(t *testing.T) {
	f := newPickerFixture(t)
	if err := f.controller.PickPosition(f.picker); err != nil {
		t.Fatalf("PickPosition() error = %v", err)
	}

	f.picker.Cancel()
	f.exec.fireAfters()

	for _, call := range f.surface.calls {
		if call == "showOverlay" {
			t.Fatalf("overlay shown after cancel: %v", f.surface.calls)
		}
	}
	if f.global.live() != 0 || f.local.live() != 0 {
		t.Fatalf("listeners registered after cancel")
	}
	if f.controller.Snapshot().Picking {
		t.Fatalf("picking still reported after cancel")
	}
}

func TestPickerRejectsSecondOpen(t *testing.T) {
	f := newPickerFixture(t)
	f.open(t)

	if err := f.picker.Open(nil, nil); !errors.Is(err, ErrPickerActive) {
		t.Fatalf("Open() error = %v, want ErrPickerActive", err)
	}
	if err := f.controller.PickPosition(f.picker); !errors.Is(err, ErrPickerActive) {
		t.Fatalf("PickPosition() error = %v, want ErrPickerActive", err)
	}
}
