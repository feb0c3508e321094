package autoclicker

import (
	"sync/atomic"
	"testing"
	"time"
)

type controllerFixture struct {
	controller *Controller
	exec       *manualExecutor
	injector   *recordingInjector
	store      *MemoryStore
	global     *fakeMonitors
	local      *fakeMonitors
}

func newFixture(t *testing.T, settings Settings) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		exec:     &manualExecutor{},
		injector: &recordingInjector{},
		store:    NewMemoryStore(settings, DefaultBinding()),
		global:   newFakeMonitors(),
		local:    newFakeMonitors(),
	}
	controller, err := NewController(Config{
		Executor: f.exec,
		Injector: f.injector,
		Pointer:  fakePointer{location: Point{X: 10, Y: 700}, height: 800},
		Store:    f.store,
		Logger:   noopLogger{},
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if err := controller.Listen(fakeGlobal{f.global}, fakeLocal{f.local}); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	f.controller = controller
	return f
}

func settingsWithCount(n int) Settings {
	s := DefaultSettings()
	s.ClickCount = n
	return s
}

func TestFiniteRunClicksExactlyCountThenStops(t *testing.T) {
	f := newFixture(t, settingsWithCount(3))

	f.controller.Start()
	if got := f.injector.count(); got != 1 {
		t.Fatalf("expected first click before Start returns, got %d", got)
	}

	for i := 0; i < 10; i++ {
		f.exec.tick()
	}

	if got := f.injector.count(); got != 3 {
		t.Fatalf("clicks = %d, want 3", got)
	}
	snap := f.controller.Snapshot()
	if snap.State != StateStopped {
		t.Fatalf("state = %v, want stopped", snap.State)
	}
	if snap.Reason != ReasonLimit {
		t.Fatalf("reason = %q, want %q", snap.Reason, ReasonLimit)
	}
	if snap.ClickCount != 0 {
		t.Fatalf("click count = %d, want reset to 0", snap.ClickCount)
	}
	if f.exec.liveRepeating() != 0 {
		t.Fatalf("expected the repeating task to be cancelled")
	}
}

func TestUnlimitedRunNeverStopsItself(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Start()
	for i := 0; i < 200; i++ {
		f.exec.tick()
	}

	snap := f.controller.Snapshot()
	if snap.State != StateRunning {
		t.Fatalf("state = %v, want running", snap.State)
	}
	if snap.ClickCount != 201 {
		t.Fatalf("click count = %d, want 201", snap.ClickCount)
	}

	f.controller.Stop()
	if got := f.controller.Snapshot(); got.State != StateStopped || got.Reason != ReasonManual {
		t.Fatalf("unexpected snapshot after Stop: %+v", got)
	}
}

func TestToggleTwiceStartsThenStopsWithOneTimer(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Toggle()
	if got := f.controller.Snapshot().State; got != StateRunning {
		t.Fatalf("state after first toggle = %v, want running", got)
	}
	f.controller.Toggle()
	if got := f.controller.Snapshot().State; got != StateStopped {
		t.Fatalf("state after second toggle = %v, want stopped", got)
	}
	if len(f.exec.tasks) != 1 {
		t.Fatalf("scheduled %d repeating tasks, want 1", len(f.exec.tasks))
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Start()
	f.controller.Start()

	if len(f.exec.tasks) != 1 {
		t.Fatalf("scheduled %d repeating tasks, want 1", len(f.exec.tasks))
	}
	if got := f.injector.count(); got != 1 {
		t.Fatalf("clicks = %d, want 1", got)
	}
}

func TestInFlightTickAfterStopDoesNothing(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Start()
	inFlight := f.exec.tasks[0].fn
	f.controller.Stop()

	inFlight()

	if got := f.injector.count(); got != 1 {
		t.Fatalf("clicks = %d, want 1", got)
	}
	if got := f.controller.Snapshot().ClickCount; got != 0 {
		t.Fatalf("click count = %d, want 0", got)
	}
}

func TestTickFromPreviousRunIsIgnored(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Start()
	stale := f.exec.tasks[0].fn
	f.controller.Stop()
	f.controller.Start()

	stale()

	if got := f.controller.Snapshot().ClickCount; got != 1 {
		t.Fatalf("click count = %d, want 1", got)
	}
}

func TestStartPersistsSettings(t *testing.T) {
	f := newFixture(t, settingsWithCount(5))

	f.controller.UpdateSettings(func(s *Settings) {
		s.Interval = 2
		s.IntervalUnit = UnitSeconds
	})
	if f.store.Saves() != 0 {
		t.Fatalf("settings persisted before start")
	}

	f.controller.Start()

	if f.store.Saves() != 1 {
		t.Fatalf("saves = %d, want 1", f.store.Saves())
	}
	saved, _ := f.store.Load()
	if saved.Interval != 2 || saved.IntervalUnit != UnitSeconds {
		t.Fatalf("unexpected persisted settings: %+v", saved)
	}
	if f.exec.tasks[0].period.Seconds() != 2 {
		t.Fatalf("period = %v, want 2s", f.exec.tasks[0].period)
	}
}

func TestClickTargetFollowsPositionMode(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Start()
	f.controller.Stop()
	f.controller.UpdateSettings(func(s *Settings) {
		s.PositionMode = PositionFixed
		s.FixedX = 40
		s.FixedY = 50
		s.Button = ButtonRight
	})
	f.controller.Start()

	clicks := f.injector.snapshot()
	if len(clicks) != 2 {
		t.Fatalf("clicks = %d, want 2", len(clicks))
	}
	if clicks[0].point != (Point{X: 10, Y: 100}) || clicks[0].button != ButtonLeft {
		t.Fatalf("unexpected current-mouse click: %+v", clicks[0])
	}
	if clicks[1].point != (Point{X: 40, Y: 50}) || clicks[1].button != ButtonRight {
		t.Fatalf("unexpected fixed click: %+v", clicks[1])
	}
}

func TestZeroIntervalUsesMinimumPeriod(t *testing.T) {
	s := settingsWithCount(0)
	s.Interval = 0
	f := newFixture(t, s)

	f.controller.Start()

	if got := f.exec.tasks[0].period; got != MinInterval {
		t.Fatalf("period = %v, want %v", got, MinInterval)
	}
}

func TestUpdateSettingsClampsNegatives(t *testing.T) {
	f := newFixture(t, DefaultSettings())

	f.controller.UpdateSettings(func(s *Settings) {
		s.ClickCount = -4
		s.Interval = -1
		s.FixedX = -10
		s.FixedY = -20
	})

	got := f.controller.Settings()
	if got.ClickCount != 0 || got.Interval != 0 || got.FixedX != 0 || got.FixedY != 0 {
		t.Fatalf("negative values not clamped: %+v", got)
	}
}

func TestIntervalMilliseconds(t *testing.T) {
	seconds := Settings{Interval: 2, IntervalUnit: UnitSeconds}
	if got := seconds.IntervalMilliseconds(); got != 2000 {
		t.Fatalf("IntervalMilliseconds() = %v, want 2000", got)
	}
	millis := Settings{Interval: 2, IntervalUnit: UnitMilliseconds}
	if got := millis.IntervalMilliseconds(); got != 2 {
		t.Fatalf("IntervalMilliseconds() = %v, want 2", got)
	}
}

func TestHotkeyMatchIsExactAndAsync(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	if f.local.sendKey(KeyEvent{KeyCode: KeyF9, Modifiers: ModCommand | ModShift}) {
		t.Fatalf("superset of modifiers must not match")
	}
	if f.local.sendKey(KeyEvent{KeyCode: KeyF9}) {
		t.Fatalf("subset of modifiers must not match")
	}
	if f.local.sendKey(KeyEvent{KeyCode: KeyF8, Modifiers: ModCommand}) {
		t.Fatalf("different key must not match")
	}
	if len(f.exec.posted) != 0 {
		t.Fatalf("non-matching keys posted %d toggles", len(f.exec.posted))
	}

	// Bits outside the device-independent set are ignored.
	if !f.local.sendKey(KeyEvent{KeyCode: KeyF9, Modifiers: ModCommand | 1<<8}) {
		t.Fatalf("expected local listener to consume the matching key")
	}
	if got := f.controller.Snapshot().State; got != StateStopped {
		t.Fatalf("toggle ran inside the event callback")
	}

	f.exec.runPosted()
	if got := f.controller.Snapshot().State; got != StateRunning {
		t.Fatalf("state = %v, want running", got)
	}

	f.global.sendKey(KeyEvent{KeyCode: KeyF9, Modifiers: ModCommand})
	f.exec.runPosted()
	snap := f.controller.Snapshot()
	if snap.State != StateStopped || snap.Reason != ReasonHotkey {
		t.Fatalf("unexpected snapshot after global hotkey: %+v", snap)
	}
}

func TestRecordingCapturesNextNonReservedKey(t *testing.T) {
	f := newFixture(t, DefaultSettings())

	f.controller.StartRecording()
	if !f.controller.Snapshot().Recording {
		t.Fatalf("expected recording mode")
	}

	if f.local.sendKey(KeyEvent{KeyCode: KeyShift, Modifiers: ModShift}) {
		t.Fatalf("reserved key must not be captured")
	}
	if !f.controller.Snapshot().Recording {
		t.Fatalf("reserved key ended recording")
	}

	if !f.local.sendKey(KeyEvent{KeyCode: KeyF9}) {
		t.Fatalf("expected captured key to be consumed")
	}

	snap := f.controller.Snapshot()
	if snap.Recording {
		t.Fatalf("recording mode still active after capture")
	}
	if snap.Binding.Display != "F9" {
		t.Fatalf("display = %q, want %q", snap.Binding.Display, "F9")
	}
	if _, saved := f.store.Load(); saved != snap.Binding {
		t.Fatalf("binding not persisted: %+v", saved)
	}
	if len(f.exec.posted) != 0 {
		t.Fatalf("captured key also toggled clicking")
	}
	if f.local.live() != 1 {
		t.Fatalf("live local monitors = %d, want only the match listener", f.local.live())
	}
}

func TestRecordingWithCommandHeld(t *testing.T) {
	f := newFixture(t, DefaultSettings())

	f.controller.StartRecording()
	f.local.sendKey(KeyEvent{KeyCode: KeyF9, Modifiers: ModCommand})

	if got := f.controller.Binding().Display; got != "⌘F9" {
		t.Fatalf("display = %q, want %q", got, "⌘F9")
	}
}

func TestCancelRecordingKeepsBinding(t *testing.T) {
	f := newFixture(t, DefaultSettings())

	f.controller.StartRecording()
	f.controller.CancelRecording()
	f.local.sendKey(KeyEvent{KeyCode: KeyA})

	if got := f.controller.Binding(); got != DefaultBinding() {
		t.Fatalf("binding changed after cancel: %+v", got)
	}
	if f.store.Saves() != 0 {
		t.Fatalf("cancel persisted the binding")
	}
}

func TestResetHotkeyRestoresDefaultAndRegrabs(t *testing.T) {
	exec := &manualExecutor{}
	store := NewMemoryStore(DefaultSettings(), NewBinding(KeyA, ModControl))
	controller, err := NewController(Config{
		Executor: exec,
		Injector: &recordingInjector{},
		Pointer:  fakePointer{height: 800},
		Store:    store,
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	global := grabbingGlobal{fakeGlobal{newFakeMonitors()}}
	if err := controller.Listen(global, nil); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	controller.ResetHotkey()

	if got := controller.Binding(); got.KeyCode != KeyF9 || got.Modifiers != ModCommand || got.Display != "⌘F9" {
		t.Fatalf("unexpected binding after reset: %+v", got)
	}
	if _, saved := store.Load(); saved != DefaultBinding() {
		t.Fatalf("reset binding not persisted: %+v", saved)
	}
	grabbed := global.grabbed
	if len(grabbed) != 2 || grabbed[0].KeyCode != KeyA || grabbed[1] != DefaultBinding() {
		t.Fatalf("unexpected grabs: %+v", grabbed)
	}
}

func TestFailedGrabKeepsHotkeyListeners(t *testing.T) {
	exec := &manualExecutor{}
	controller, err := NewController(Config{
		Executor: exec,
		Injector: &recordingInjector{},
		Pointer:  fakePointer{height: 800},
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	failures := 1
	global := newFakeMonitors()
	local := newFakeMonitors()

	if err := controller.Listen(flakyGrabGlobal{fakeGlobal{global}, &failures}, fakeLocal{local}); err == nil {
		t.Fatalf("Listen() error = nil, want grab failure")
	}
	if global.live() != 1 || local.live() != 1 {
		t.Fatalf("listeners after failed grab: global=%d local=%d, want 1 each", global.live(), local.live())
	}

	controller.ResetHotkey()
	if len(global.grabbed) != 1 || global.grabbed[0] != DefaultBinding() {
		t.Fatalf("unexpected grabs after reset: %+v", global.grabbed)
	}
	if !local.sendKey(KeyEvent{KeyCode: KeyF9, Modifiers: ModCommand}) {
		t.Fatalf("hotkey not consumed after a successful regrab")
	}
	exec.runPosted()
	if got := controller.Snapshot().State; got != StateRunning {
		t.Fatalf("state = %v, want running", got)
	}
	controller.Close()
}

func TestSnapshotsFromConcurrentCallersArriveInOrder(t *testing.T) {
	loop := startLoop(t)
	settings := settingsWithCount(0)
	settings.Interval = 3600
	settings.IntervalUnit = UnitSeconds
	controller, err := NewController(Config{
		Executor: loop,
		Injector: &recordingInjector{},
		Pointer:  fakePointer{height: 800},
		Store:    NewMemoryStore(settings, DefaultBinding()),
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	defer controller.Close()

	entered := make(chan struct{})
	release := make(chan struct{})
	delivered := make(chan Snapshot, 8)
	var held atomic.Bool
	controller.Subscribe(func(s Snapshot) {
		if s.State == StateRunning && held.CompareAndSwap(false, true) {
			close(entered)
			<-release
		}
		delivered <- s
	})

	loop.Post(controller.Start)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for the running snapshot")
	}

	stopped := make(chan struct{})
	go func() {
		controller.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		close(release)
		t.Fatalf("Stop blocked behind a subscriber on another goroutine")
	}
	close(release)

	for _, want := range []State{StateRunning, StateStopped} {
		select {
		case s := <-delivered:
			if s.State != want {
				t.Fatalf("delivered state = %v, want %v", s.State, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %v snapshot", want)
		}
	}
	select {
	case s := <-delivered:
		t.Fatalf("unexpected extra snapshot: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
	if got := controller.Snapshot().State; got != StateStopped {
		t.Fatalf("controller state = %v, want stopped", got)
	}
}

func TestSubscriberMayCallBackIntoController(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	var states []State
	f.controller.Subscribe(func(s Snapshot) {
		states = append(states, s.State)
		if s.State == StateRunning {
			f.controller.Stop()
		}
	})
	f.controller.Start()

	if len(states) != 2 || states[0] != StateRunning || states[1] != StateStopped {
		t.Fatalf("delivered states = %v, want [running stopped]", states)
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	f := newFixture(t, settingsWithCount(2))

	var states []State
	unsubscribe := f.controller.Subscribe(func(s Snapshot) {
		states = append(states, s.State)
	})

	f.controller.Start()
	f.exec.tick()
	f.exec.tick()
	unsubscribe()
	unsubscribe()
	f.controller.Start()

	want := []State{StateRunning, StateRunning, StateStopped}
	if len(states) != len(want) {
		t.Fatalf("got %d snapshots %v, want %v", len(states), states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("snapshot %d state = %v, want %v", i, states[i], want[i])
		}
	}
}

func TestCloseStopsRunAndRemovesListeners(t *testing.T) {
	f := newFixture(t, settingsWithCount(0))

	f.controller.Start()
	f.controller.StartRecording()
	f.controller.Close()
	f.controller.Close()

	snap := f.controller.Snapshot()
	if snap.State != StateStopped || snap.Reason != ReasonShutdown {
		t.Fatalf("unexpected snapshot after Close: %+v", snap)
	}
	if f.global.live() != 0 || f.local.live() != 0 {
		t.Fatalf("listeners left after Close: global=%d local=%d", f.global.live(), f.local.live())
	}
	if f.global.removed() != 1 || f.local.removed() != 2 {
		t.Fatalf("unexpected removals: global=%d local=%d", f.global.removed(), f.local.removed())
	}

	f.controller.Start()
	if got := f.controller.Snapshot().State; got != StateStopped {
		t.Fatalf("Start after Close changed state to %v", got)
	}
}

func TestNewControllerRequiresCollaborators(t *testing.T) {
	if _, err := NewController(Config{Injector: &recordingInjector{}, Pointer: fakePointer{}}); err == nil {
		t.Fatalf("expected error without executor")
	}
	if _, err := NewController(Config{Executor: &manualExecutor{}, Pointer: fakePointer{}}); err == nil {
		t.Fatalf("expected error without injector")
	}
	if _, err := NewController(Config{Executor: &manualExecutor{}, Injector: &recordingInjector{}}); err == nil {
		t.Fatalf("expected error without pointer")
	}
}
