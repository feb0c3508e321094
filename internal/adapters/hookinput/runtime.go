//go:build cgo

package hookinput

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"

	"autoclick/internal/core/autoclicker"
)

const clickHold = 5

// Runtime drives robotgo for injection and pointer queries and runs a single
// gohook session for global key and button events.
type Runtime struct {
	logger autoclicker.Logger

	mu      sync.Mutex
	nextID  int
	keys    map[int]func(autoclicker.KeyEvent)
	presses map[int]func(autoclicker.Button)

	started bool

	injectMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewRuntime(logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Runtime{
		logger:  logger,
		keys:    make(map[int]func(autoclicker.KeyEvent)),
		presses: make(map[int]func(autoclicker.Button)),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins the hook session. The hook is process-wide, so only one
// Runtime may be started at a time.
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	select {
	case <-r.stopCh:
		return fmt.Errorf("hook runtime stopped")
	default:
	}
	r.started = true
	go r.eventLoop(hook.Start())
	return nil
}

func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		r.mu.Lock()
		started := r.started
		r.mu.Unlock()
		if !started {
			return
		}
		hook.End()
		<-r.doneCh
	})
}

// Click moves the pointer to p and holds button briefly before releasing.
func (r *Runtime) Click(p autoclicker.Point, button autoclicker.Button) error {
	r.injectMu.Lock()
	defer r.injectMu.Unlock()

	name := buttonName(button)
	robotgo.Move(int(p.X), int(p.Y))
	if err := robotgo.Toggle(name); err != nil {
		return fmt.Errorf("press %s: %w", name, err)
	}
	robotgo.MilliSleep(clickHold)
	if err := robotgo.Toggle(name, "up"); err != nil {
		return fmt.Errorf("release %s: %w", name, err)
	}
	return nil
}

// Location reports the pointer with a bottom-left origin.
func (r *Runtime) Location() autoclicker.Point {
	x, y := robotgo.Location()
	return autoclicker.Point{X: float64(x), Y: r.ScreenHeight() - float64(y)}
}

func (r *Runtime) ScreenHeight() float64 {
	_, h := robotgo.GetScreenSize()
	return float64(h)
}

func (r *Runtime) MonitorKeys(fn func(autoclicker.KeyEvent)) autoclicker.Monitor {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.keys[id] = fn
	r.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		r.mu.Lock()
		delete(r.keys, id)
		r.mu.Unlock()
	})
}

func (r *Runtime) MonitorPresses(fn func(autoclicker.Button)) autoclicker.Monitor {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.presses[id] = fn
	r.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		r.mu.Lock()
		delete(r.presses, id)
		r.mu.Unlock()
	})
}

func (r *Runtime) eventLoop(events chan hook.Event) {
	defer close(r.doneCh)

	held := make(heldKeys)
	for {
		var ev hook.Event
		select {
		case <-r.stopCh:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			ev = e
		}

		switch ev.Kind {
		case hook.KeyHold:
			if !held.press(ev.Keycode) {
				continue
			}
			key, ok := CanonicalKey(ev.Keycode)
			if !ok {
				r.logger.Debug("Ignoring unmapped key", "keycode", ev.Keycode, "rawcode", ev.Rawcode)
				continue
			}
			keyEvent := autoclicker.KeyEvent{KeyCode: key, Modifiers: ModifiersFromMask(ev.Mask)}
			for _, fn := range r.keyCallbacks() {
				fn(keyEvent)
			}
		case hook.KeyUp:
			held.release(ev.Keycode)
		case hook.MouseHold:
			button, ok := buttonFromHook(ev.Button)
			if !ok {
				continue
			}
			for _, fn := range r.pressCallbacks() {
				fn(button)
			}
		}
	}
}

func (r *Runtime) keyCallbacks() []func(autoclicker.KeyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.keys))
	for id := range r.keys {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.KeyEvent), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.keys[id])
	}
	return out
}

func (r *Runtime) pressCallbacks() []func(autoclicker.Button) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.presses))
	for id := range r.presses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.Button), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.presses[id])
	}
	return out
}
