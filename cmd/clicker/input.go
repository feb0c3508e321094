package main

import (
	"sort"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"autoclick/internal/core/autoclicker"
)

// trackedPointer is a Pointer fed by mouse movement over our own windows.
// Positions are stored top-left and reported bottom-left.
type trackedPointer struct {
	mu     sync.Mutex
	pos    autoclicker.Point
	height float64
}

func (p *trackedPointer) Track(pos autoclicker.Point, screenHeight float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
	if screenHeight > 0 {
		p.height = screenHeight
	}
}

func (p *trackedPointer) Location() autoclicker.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return autoclicker.Point{X: p.pos.X, Y: p.height - p.pos.Y}
}

func (p *trackedPointer) ScreenHeight() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

// foregroundMuted drops global key events while our app is in the
// foreground and the focused widget lets key events reach the local hub.
// Presses pass through.
type foregroundMuted struct {
	autoclicker.GlobalMonitors
	foreground atomic.Bool
	routed     func() bool
	bypassed   func()
}

func (m *foregroundMuted) MonitorKeys(fn func(autoclicker.KeyEvent)) autoclicker.Monitor {
	return m.GlobalMonitors.MonitorKeys(func(ev autoclicker.KeyEvent) {
		if m.foreground.Load() {
			if m.routed() {
				return
			}
			m.bypassed()
		}
		fn(ev)
	})
}

// muteWhileForeground wraps global unless it grabs its keys, in which case
// our windows never see the hotkey and nothing can fire twice. routed reports
// whether our windows currently deliver key events to the hub; bypassed runs
// for every global key taken while they do not. Either may be nil.
func muteWhileForeground(global autoclicker.GlobalMonitors, routed func() bool, bypassed func()) (autoclicker.GlobalMonitors, *atomic.Bool) {
	if _, grabs := global.(autoclicker.KeyGrabber); grabs {
		return global, new(atomic.Bool)
	}
	if routed == nil {
		routed = func() bool { return true }
	}
	if bypassed == nil {
		bypassed = func() {}
	}
	m := &foregroundMuted{GlobalMonitors: global, routed: routed, bypassed: bypassed}
	return m, &m.foreground
}

// keysReachHub reports whether key events on c end up in a localHub: either
// nothing is focused and the canvas handlers run, or the focus is a hubEntry.
func keysReachHub(c fyne.Canvas) bool {
	switch c.Focused().(type) {
	case nil, *hubEntry:
		return true
	}
	return false
}

// hubEntry is an entry that shows its key events to a localHub first. Keys a
// hub handler consumes are not typed into the entry.
type hubEntry struct {
	widget.Entry
	hub *localHub

	mu      sync.Mutex
	swallow fyne.KeyName
}

func newHubEntry(hub *localHub) *hubEntry {
	e := &hubEntry{hub: hub}
	e.ExtendBaseWidget(e)
	return e
}

func (e *hubEntry) KeyDown(ev *fyne.KeyEvent) {
	if e.hub.keyDown(ev.Name) {
		e.mu.Lock()
		e.swallow = ev.Name
		e.mu.Unlock()
		return
	}
	e.Entry.KeyDown(ev)
}

func (e *hubEntry) KeyUp(ev *fyne.KeyEvent) {
	e.hub.keyUp(ev.Name)
	if e.consumed(ev.Name, true) {
		return
	}
	e.Entry.KeyUp(ev)
}

func (e *hubEntry) TypedKey(ev *fyne.KeyEvent) {
	if e.consumed(ev.Name, false) {
		return
	}
	e.Entry.TypedKey(ev)
}

func (e *hubEntry) TypedShortcut(sc fyne.Shortcut) {
	if custom, ok := sc.(*desktop.CustomShortcut); ok && e.consumed(custom.KeyName, false) {
		return
	}
	e.Entry.TypedShortcut(sc)
}

// consumed reports whether name was taken by the hub on key down. The mark is
// cleared on key up.
func (e *hubEntry) consumed(name fyne.KeyName, release bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == "" || e.swallow != name {
		return false
	}
	if release {
		e.swallow = ""
	}
	return true
}

// localHub implements LocalMonitors over key and press events delivered by
// our fyne windows. Handlers run in registration order until one consumes.
type localHub struct {
	mu        sync.Mutex
	nextID    int
	keys      map[int]func(autoclicker.KeyEvent) bool
	presses   map[int]func(autoclicker.Button) bool
	modifiers map[fyne.KeyName]struct{}
}

func newLocalHub() *localHub {
	return &localHub{
		keys:      make(map[int]func(autoclicker.KeyEvent) bool),
		presses:   make(map[int]func(autoclicker.Button) bool),
		modifiers: make(map[fyne.KeyName]struct{}),
	}
}

func (h *localHub) MonitorKeys(fn func(autoclicker.KeyEvent) bool) autoclicker.Monitor {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.keys[id] = fn
	h.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		h.mu.Lock()
		delete(h.keys, id)
		h.mu.Unlock()
	})
}

func (h *localHub) MonitorPresses(fn func(autoclicker.Button) bool) autoclicker.Monitor {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.presses[id] = fn
	h.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		h.mu.Lock()
		delete(h.presses, id)
		h.mu.Unlock()
	})
}

// attach routes the canvas key events into the hub.
func (h *localHub) attach(c fyne.Canvas) {
	dc, ok := c.(desktop.Canvas)
	if !ok {
		return
	}
	dc.SetOnKeyDown(func(ev *fyne.KeyEvent) { h.keyDown(ev.Name) })
	dc.SetOnKeyUp(func(ev *fyne.KeyEvent) { h.keyUp(ev.Name) })
}

func (h *localHub) keyDown(name fyne.KeyName) bool {
	if _, ok := modifierKeys[name]; ok {
		h.mu.Lock()
		h.modifiers[name] = struct{}{}
		h.mu.Unlock()
	}

	key, ok := canonicalKey(name)
	if !ok {
		return false
	}

	h.mu.Lock()
	ev := autoclicker.KeyEvent{KeyCode: key, Modifiers: h.modifierMaskLocked()}
	handlers := keyHandlersLocked(h.keys)
	h.mu.Unlock()

	for _, fn := range handlers {
		if fn(ev) {
			return true
		}
	}
	return false
}

func (h *localHub) keyUp(name fyne.KeyName) {
	h.mu.Lock()
	delete(h.modifiers, name)
	h.mu.Unlock()
}

func (h *localHub) press(button autoclicker.Button) bool {
	h.mu.Lock()
	ids := make([]int, 0, len(h.presses))
	for id := range h.presses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(autoclicker.Button) bool, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, h.presses[id])
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		if fn(button) {
			return true
		}
	}
	return false
}

// resetModifiers forgets held modifiers. Key ups are lost once focus moves
// to another application.
func (h *localHub) resetModifiers() {
	h.mu.Lock()
	h.modifiers = make(map[fyne.KeyName]struct{})
	h.mu.Unlock()
}

func (h *localHub) modifierMaskLocked() autoclicker.ModifierMask {
	var mask autoclicker.ModifierMask
	for name := range h.modifiers {
		mask |= modifierKeys[name]
	}
	return mask
}

func keyHandlersLocked(m map[int]func(autoclicker.KeyEvent) bool) []func(autoclicker.KeyEvent) bool {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.KeyEvent) bool, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
