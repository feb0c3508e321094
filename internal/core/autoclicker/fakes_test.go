package autoclicker

import (
	"errors"
	"sync"
	"time"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type click struct {
	point  Point
	button Button
}

type recordingInjector struct {
	mu      sync.Mutex
	clicks  []click
	onClick func()
}

func (r *recordingInjector) Click(p Point, button Button) error {
	r.mu.Lock()
	r.clicks = append(r.clicks, click{point: p, button: button})
	hook := r.onClick
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (r *recordingInjector) snapshot() []click {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]click, len(r.clicks))
	copy(out, r.clicks)
	return out
}

func (r *recordingInjector) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clicks)
}

type fakePointer struct {
	location Point
	height   float64
}

func (f fakePointer) Location() Point        { return f.location }
func (f fakePointer) ScreenHeight() float64 { return f.height }

type scheduled struct {
	period    time.Duration
	fn        func()
	cancelled bool
	repeat    bool
}

// manualExecutor runs nothing until the test asks it to.
type manualExecutor struct {
	posted []func()
	tasks  []*scheduled
}

func (m *manualExecutor) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

func (m *manualExecutor) Every(period time.Duration, fn func()) CancelFunc {
	task := &scheduled{period: period, fn: fn, repeat: true}
	m.tasks = append(m.tasks, task)
	return func() { task.cancelled = true }
}

func (m *manualExecutor) After(delay time.Duration, fn func()) CancelFunc {
	task := &scheduled{period: delay, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() { task.cancelled = true }
}

func (m *manualExecutor) runPosted() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

// tick fires every live repeating task once.
func (m *manualExecutor) tick() {
	for _, task := range append([]*scheduled(nil), m.tasks...) {
		if task.repeat && !task.cancelled {
			task.fn()
		}
	}
}

// fireAfters runs every pending one-shot task once.
func (m *manualExecutor) fireAfters() {
	for _, task := range append([]*scheduled(nil), m.tasks...) {
		if !task.repeat && !task.cancelled {
			task.cancelled = true
			task.fn()
		}
	}
}

func (m *manualExecutor) liveRepeating() int {
	n := 0
	for _, task := range m.tasks {
		if task.repeat && !task.cancelled {
			n++
		}
	}
	return n
}

// fakeMonitors implements both monitor sets and counts live registrations.
type fakeMonitors struct {
	mu       sync.Mutex
	nextID   int
	keys     map[int]func(KeyEvent) bool
	presses  map[int]func(Button) bool
	removals int
	grabbed  []Binding
}

func newFakeMonitors() *fakeMonitors {
	return &fakeMonitors{
		keys:    make(map[int]func(KeyEvent) bool),
		presses: make(map[int]func(Button) bool),
	}
}

func (f *fakeMonitors) addKey(fn func(KeyEvent) bool) Monitor {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.keys[id] = fn
	f.mu.Unlock()
	return NewMonitor(func() {
		f.mu.Lock()
		delete(f.keys, id)
		f.removals++
		f.mu.Unlock()
	})
}

func (f *fakeMonitors) addPress(fn func(Button) bool) Monitor {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.presses[id] = fn
	f.mu.Unlock()
	return NewMonitor(func() {
		f.mu.Lock()
		delete(f.presses, id)
		f.removals++
		f.mu.Unlock()
	})
}

// sendKey delivers ev to every key handler and reports whether one consumed it.
func (f *fakeMonitors) sendKey(ev KeyEvent) bool {
	f.mu.Lock()
	handlers := make([]func(KeyEvent) bool, 0, len(f.keys))
	for id := 0; id < f.nextID; id++ {
		if fn, ok := f.keys[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	f.mu.Unlock()

	consumed := false
	for _, fn := range handlers {
		if fn(ev) {
			consumed = true
		}
	}
	return consumed
}

func (f *fakeMonitors) sendPress(b Button) bool {
	f.mu.Lock()
	handlers := make([]func(Button) bool, 0, len(f.presses))
	for id := 0; id < f.nextID; id++ {
		if fn, ok := f.presses[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	f.mu.Unlock()

	consumed := false
	for _, fn := range handlers {
		if fn(b) {
			consumed = true
		}
	}
	return consumed
}

func (f *fakeMonitors) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys) + len(f.presses)
}

func (f *fakeMonitors) removed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removals
}

type fakeGlobal struct{ *fakeMonitors }

func (g fakeGlobal) MonitorKeys(fn func(KeyEvent)) Monitor {
	return g.addKey(func(ev KeyEvent) bool {
		fn(ev)
		return false
	})
}

func (g fakeGlobal) MonitorPresses(fn func(Button)) Monitor {
	return g.addPress(func(b Button) bool {
		fn(b)
		return false
	})
}

type grabbingGlobal struct{ fakeGlobal }

func (g grabbingGlobal) GrabHotkey(b Binding) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grabbed = append(g.grabbed, b)
	return nil
}

// flakyGrabGlobal fails while *failures is positive, then grabs like
// grabbingGlobal.
type flakyGrabGlobal struct {
	fakeGlobal
	failures *int
}

func (g flakyGrabGlobal) GrabHotkey(b Binding) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if *g.failures > 0 {
		*g.failures--
		return errors.New("key is grabbed by another client")
	}
	g.grabbed = append(g.grabbed, b)
	return nil
}

type fakeLocal struct{ *fakeMonitors }

func (l fakeLocal) MonitorKeys(fn func(KeyEvent) bool) Monitor { return l.addKey(fn) }

func (l fakeLocal) MonitorPresses(fn func(Button) bool) Monitor { return l.addPress(fn) }

type fakeSurface struct {
	calls []string
}

func (s *fakeSurface) HideMain()    { s.calls = append(s.calls, "hideMain") }
func (s *fakeSurface) ShowMain()    { s.calls = append(s.calls, "showMain") }
func (s *fakeSurface) ShowOverlay() { s.calls = append(s.calls, "showOverlay") }
func (s *fakeSurface) HideOverlay() { s.calls = append(s.calls, "hideOverlay") }
