package autoclicker

import (
	"errors"
	"sort"
	"sync"
)

type Config struct {
	Executor Executor
	Injector Injector
	Pointer  Pointer
	// Store defaults to an in-memory store seeded with defaults.
	Store  Store
	Logger Logger
}

// Snapshot is the observable controller state delivered to subscribers.
type Snapshot struct {
	State      State
	ClickCount int
	Settings   Settings
	Binding    Binding
	Recording  bool
	Picking    bool
	// Reason explains the most recent transition to stopped.
	Reason StopReason
}

// Controller owns the click settings, the run state and the hotkey binding.
// It is safe for concurrent use. Subscribers are never called with the
// internal lock held and see snapshots in the order the changes were made,
// one at a time, whichever goroutine made them.
type Controller struct {
	exec     Executor
	injector Injector
	pointer  Pointer
	store    Store
	logger   Logger

	mu         sync.Mutex
	settings   Settings
	binding    Binding
	state      State
	clicks     int
	reason     StopReason
	recording  bool
	picking    bool
	generation uint64
	cancelTick CancelFunc
	closed     bool

	local     LocalMonitors
	grabber   KeyGrabber
	monitors  []Monitor
	recordMon Monitor

	subsMu     sync.Mutex
	idle       *sync.Cond
	subs       map[int]func(Snapshot)
	nextSub    int
	pending    []Snapshot
	delivering bool
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if cfg.Injector == nil {
		return nil, errors.New("injector is required")
	}
	if cfg.Pointer == nil {
		return nil, errors.New("pointer is required")
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore(DefaultSettings(), DefaultBinding())
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger{}
	}

	settings, binding := cfg.Store.Load()
	if binding.Display == "" {
		binding = NewBinding(binding.KeyCode, binding.Modifiers)
	}

	c := &Controller{
		exec:     cfg.Executor,
		injector: cfg.Injector,
		pointer:  cfg.Pointer,
		store:    cfg.Store,
		logger:   cfg.Logger,
		settings: settings.Clamped(),
		binding:  binding,
		local:    NoLocalMonitors,
		subs:     make(map[int]func(Snapshot)),
	}
	c.idle = sync.NewCond(&c.subsMu)
	return c, nil
}

// Subscribe registers fn for every observable change and returns a function
// that removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *Controller) Binding() Binding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.binding
}

// UpdateSettings applies fn to a copy of the settings and clamps the result.
// Changes are persisted on the next start.
func (c *Controller) UpdateSettings(fn func(*Settings)) {
	c.mu.Lock()
	next := c.settings
	fn(&next)
	c.settings = next.Clamped()
	c.queueLocked()
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) SetFixedPosition(p Point) {
	c.UpdateSettings(func(s *Settings) {
		s.FixedX = p.X
		s.FixedY = p.Y
	})
}

// Start begins a run. The first click happens before Start returns.
func (c *Controller) Start() {
	c.mu.Lock()
	changed := c.startLocked()
	if changed {
		c.queueLocked()
	}
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) Stop() {
	c.stop(ReasonManual)
}

func (c *Controller) Toggle() {
	c.toggle(ReasonManual)
}

func (c *Controller) stop(reason StopReason) {
	c.mu.Lock()
	changed := c.stopLocked(reason)
	if changed {
		c.queueLocked()
	}
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) toggle(reason StopReason) {
	c.mu.Lock()
	var changed bool
	if c.state == StateRunning {
		changed = c.stopLocked(reason)
	} else {
		changed = c.startLocked()
	}
	if changed {
		c.queueLocked()
	}
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) startLocked() bool {
	if c.closed || c.state == StateRunning {
		return false
	}
	c.persistLocked()

	c.clicks = 0
	c.state = StateRunning
	c.reason = ReasonNone
	c.generation++
	gen := c.generation

	period := c.settings.Period()
	c.logger.Info("clicking started",
		"count", c.settings.ClickCount,
		"interval_ms", c.settings.IntervalMilliseconds(),
		"button", c.settings.Button.String(),
		"position", c.settings.PositionMode.String(),
	)

	c.clickLocked(gen)
	if c.state == StateRunning && c.generation == gen {
		c.cancelTick = c.exec.Every(period, func() {
			c.performClick(gen)
		})
	}
	return true
}

func (c *Controller) stopLocked(reason StopReason) bool {
	if c.state != StateRunning {
		return false
	}
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
	c.generation++
	c.logger.Info("clicking stopped", "reason", string(reason), "clicks", c.clicks)
	c.state = StateStopped
	c.clicks = 0
	c.reason = reason
	return true
}

// performClick is the tick body. Ticks from a run that already ended are
// ignored.
func (c *Controller) performClick(gen uint64) {
	c.mu.Lock()
	changed := c.clickLocked(gen)
	if changed {
		c.queueLocked()
	}
	c.mu.Unlock()
	c.flush()
}

func (c *Controller) clickLocked(gen uint64) bool {
	if c.state != StateRunning || c.generation != gen {
		return false
	}
	if c.settings.ClickCount > 0 && c.clicks >= c.settings.ClickCount {
		return c.stopLocked(ReasonLimit)
	}

	target := c.targetLocked()
	if err := c.injector.Click(target, c.settings.Button); err != nil {
		c.logger.Warn("click injection failed", "x", target.X, "y", target.Y, "err", err)
	}
	c.clicks++
	return true
}

func (c *Controller) targetLocked() Point {
	if c.settings.PositionMode == PositionFixed {
		return c.settings.FixedPoint()
	}
	return TopLeft(c.pointer)
}

// TopLeft reads the pointer location and flips it into top-left-origin space.
func TopLeft(p Pointer) Point {
	loc := p.Location()
	return Point{X: loc.X, Y: p.ScreenHeight() - loc.Y}
}

// Listen installs the hotkey listeners. Global monitors that implement
// KeyGrabber are asked to grab the current binding and every later one.
// Calling Listen again replaces the previous listeners. A failed grab is
// returned, but the listeners stay installed so a later successful grab
// through recording or ResetHotkey takes effect.
func (c *Controller) Listen(global GlobalMonitors, local LocalMonitors) error {
	if global == nil {
		global = NoGlobalMonitors
	}
	if local == nil {
		local = NoLocalMonitors
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	old := c.monitors
	c.monitors = nil
	c.local = local
	c.grabber, _ = global.(KeyGrabber)
	binding := c.binding
	grabber := c.grabber
	c.mu.Unlock()

	for _, m := range old {
		m.Remove()
	}

	var grabErr error
	if grabber != nil {
		grabErr = grabber.GrabHotkey(binding)
	}

	monitors := []Monitor{
		global.MonitorKeys(func(ev KeyEvent) {
			c.matchKey(ev)
		}),
		local.MonitorKeys(func(ev KeyEvent) bool {
			return c.matchKey(ev)
		}),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		for _, m := range monitors {
			m.Remove()
		}
		return nil
	}
	c.monitors = monitors
	c.mu.Unlock()
	return grabErr
}

// matchKey toggles the run on an exact match. The toggle is posted to the
// executor rather than run inside the event callback.
func (c *Controller) matchKey(ev KeyEvent) bool {
	c.mu.Lock()
	matched := !c.closed && !c.recording && c.binding.Matches(ev)
	c.mu.Unlock()
	if !matched {
		return false
	}
	c.logger.Debug("hotkey matched", "key", ev.KeyCode, "modifiers", uint32(ev.Modifiers))
	c.exec.Post(func() {
		c.toggle(ReasonHotkey)
	})
	return true
}

// StartRecording captures the next non-reserved key press from the local
// listener as the new binding. Matching is suspended while recording.
func (c *Controller) StartRecording() {
	c.mu.Lock()
	if c.closed || c.recording {
		c.mu.Unlock()
		return
	}
	c.recording = true
	local := c.local
	c.queueLocked()
	c.mu.Unlock()

	mon := local.MonitorKeys(c.recordKey)

	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		mon.Remove()
		c.flush()
		return
	}
	c.recordMon = mon
	c.mu.Unlock()

	c.logger.Debug("hotkey recording started")
	c.flush()
}

func (c *Controller) CancelRecording() {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return
	}
	mon := c.endRecordingLocked()
	c.queueLocked()
	c.mu.Unlock()

	removeMonitor(mon)
	c.logger.Debug("hotkey recording cancelled")
	c.flush()
}

func (c *Controller) recordKey(ev KeyEvent) bool {
	c.mu.Lock()
	if !c.recording || IsReservedKey(ev.KeyCode) {
		c.mu.Unlock()
		return false
	}
	mon := c.endRecordingLocked()
	c.binding = NewBinding(ev.KeyCode, ev.Modifiers)
	c.persistLocked()
	binding := c.binding
	grabber := c.grabber
	c.queueLocked()
	c.mu.Unlock()

	removeMonitor(mon)
	c.regrab(grabber, binding)
	c.logger.Info("hotkey recorded", "hotkey", binding.Display, "key", binding.KeyCode)
	c.flush()
	return true
}

// ResetHotkey restores command+F9 and persists it.
func (c *Controller) ResetHotkey() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	var mon Monitor
	if c.recording {
		mon = c.endRecordingLocked()
	}
	c.binding = DefaultBinding()
	c.persistLocked()
	binding := c.binding
	grabber := c.grabber
	c.queueLocked()
	c.mu.Unlock()

	removeMonitor(mon)
	c.regrab(grabber, binding)
	c.logger.Info("hotkey reset", "hotkey", binding.Display)
	c.flush()
}

func (c *Controller) endRecordingLocked() Monitor {
	c.recording = false
	mon := c.recordMon
	c.recordMon = nil
	return mon
}

func (c *Controller) regrab(grabber KeyGrabber, binding Binding) {
	if grabber == nil {
		return
	}
	if err := grabber.GrabHotkey(binding); err != nil {
		c.logger.Warn("failed to grab hotkey", "hotkey", binding.Display, "err", err)
	}
}

// PickPosition opens p and stores the picked point as the fixed position.
// Cancelling the picker leaves the settings untouched.
func (c *Controller) PickPosition(p *Picker) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.picking || p.Active() {
		c.mu.Unlock()
		return ErrPickerActive
	}
	c.picking = true
	c.queueLocked()
	c.mu.Unlock()
	c.flush()

	err := p.Open(func(pt Point) {
		c.logger.Info("position picked", "x", pt.X, "y", pt.Y)
		c.SetFixedPosition(pt)
	}, c.endPicking)
	if err != nil {
		c.endPicking()
	}
	return err
}

func (c *Controller) endPicking() {
	c.mu.Lock()
	if !c.picking {
		c.mu.Unlock()
		return
	}
	c.picking = false
	c.queueLocked()
	c.mu.Unlock()
	c.flush()
}

// Close stops any run and removes every listener. It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopLocked(ReasonShutdown)
	var recordMon Monitor
	if c.recording {
		recordMon = c.endRecordingLocked()
	}
	monitors := c.monitors
	c.monitors = nil
	c.closed = true
	c.queueLocked()
	c.mu.Unlock()

	removeMonitor(recordMon)
	for _, m := range monitors {
		m.Remove()
	}
	c.waitDelivered()
}

func (c *Controller) persistLocked() {
	if err := c.store.Save(c.settings, c.binding); err != nil {
		c.logger.Warn("failed to persist settings", "err", err)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		ClickCount: c.clicks,
		Settings:   c.settings,
		Binding:    c.binding,
		Recording:  c.recording,
		Picking:    c.picking,
		Reason:     c.reason,
	}
}

// queueLocked records the current state for delivery. Callers hold mu, so the
// queue follows the order of the mutations.
func (c *Controller) queueLocked() {
	snap := c.snapshotLocked()
	c.subsMu.Lock()
	c.pending = append(c.pending, snap)
	c.subsMu.Unlock()
}

// flush delivers queued snapshots. Only one goroutine delivers at a time; a
// caller that finds delivery in progress leaves its snapshot to that
// goroutine and returns, so a subscriber may call back into the controller.
func (c *Controller) flush() {
	c.subsMu.Lock()
	if c.delivering {
		c.subsMu.Unlock()
		return
	}
	c.delivering = true
	drained := false
	defer func() {
		if !drained {
			c.subsMu.Lock()
			c.delivering = false
			c.idle.Broadcast()
			c.subsMu.Unlock()
		}
	}()

	for len(c.pending) > 0 {
		snap := c.pending[0]
		c.pending = c.pending[1:]
		fns := c.subscribersLocked()
		c.subsMu.Unlock()

		for _, fn := range fns {
			fn(snap)
		}
		c.subsMu.Lock()
	}
	c.delivering = false
	drained = true
	c.idle.Broadcast()
	c.subsMu.Unlock()
}

// waitDelivered blocks until no snapshot is queued or being delivered. It
// must not be called from a subscriber.
func (c *Controller) waitDelivered() {
	for {
		c.subsMu.Lock()
		for c.delivering {
			c.idle.Wait()
		}
		empty := len(c.pending) == 0
		c.subsMu.Unlock()
		if empty {
			return
		}
		c.flush()
	}
}

func (c *Controller) subscribersLocked() []func(Snapshot) {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	return fns
}

func removeMonitor(m Monitor) {
	if m != nil {
		m.Remove()
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
