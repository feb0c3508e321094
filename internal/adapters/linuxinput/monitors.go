//go:build linux

package linuxinput

import (
	"sort"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"autoclick/internal/core/autoclicker"
)

// dispatcher fans decoded evdev events out to registered monitors.
type dispatcher struct {
	logger    autoclicker.Logger
	modifiers *modifierState

	mu      sync.Mutex
	nextID  int
	keys    map[int]func(autoclicker.KeyEvent)
	presses map[int]func(autoclicker.Button)
}

func newDispatcher(logger autoclicker.Logger) *dispatcher {
	return &dispatcher{
		logger:    logger,
		modifiers: newModifierState(),
		keys:      make(map[int]func(autoclicker.KeyEvent)),
		presses:   make(map[int]func(autoclicker.Button)),
	}
}

func (d *dispatcher) MonitorKeys(fn func(autoclicker.KeyEvent)) autoclicker.Monitor {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.keys[id] = fn
	d.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		d.mu.Lock()
		delete(d.keys, id)
		d.mu.Unlock()
	})
}

func (d *dispatcher) MonitorPresses(fn func(autoclicker.Button)) autoclicker.Monitor {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.presses[id] = fn
	d.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		d.mu.Lock()
		delete(d.presses, id)
		d.mu.Unlock()
	})
}

// handleEvent consumes one raw event from source. Only initial presses are
// delivered; autorepeat and releases only update modifier state.
func (d *dispatcher) handleEvent(source string, event evdev.InputEvent) {
	if event.Type != evdev.EV_KEY {
		return
	}
	if d.modifiers.update(source, event.Code, event.Value) {
		return
	}
	if event.Value != 1 {
		return
	}

	if button, ok := buttonCodes[event.Code]; ok {
		for _, fn := range d.pressHandlers() {
			fn(button)
		}
		return
	}

	key, ok := CanonicalKey(event.Code)
	if !ok {
		d.logger.Debug("Ignoring unmapped key", "source", source, "code", FormatCodeName(event.Code))
		return
	}
	ev := autoclicker.KeyEvent{KeyCode: key, Modifiers: d.modifiers.mask()}
	for _, fn := range d.keyHandlers() {
		fn(ev)
	}
}

// dropSource clears modifier state for a device that went away.
func (d *dispatcher) dropSource(source string) {
	d.modifiers.forget(source)
}

func (d *dispatcher) keyHandlers() []func(autoclicker.KeyEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int, 0, len(d.keys))
	for id := range d.keys {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.KeyEvent), 0, len(ids))
	for _, id := range ids {
		out = append(out, d.keys[id])
	}
	return out
}

func (d *dispatcher) pressHandlers() []func(autoclicker.Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int, 0, len(d.presses))
	for id := range d.presses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.Button), 0, len(ids))
	for _, id := range ids {
		out = append(out, d.presses[id])
	}
	return out
}
