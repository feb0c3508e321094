package autoclicker

import (
	"errors"
	"sync"
	"time"
)

type PickerConfig struct {
	Executor Executor
	Surface  Surface
	Pointer  Pointer
	Global   GlobalMonitors
	Local    LocalMonitors
	Logger   Logger

	// ShowDelay and RestoreDelay default to PickerShowDelay and
	// PickerRestoreDelay.
	ShowDelay    time.Duration
	RestoreDelay time.Duration
}

// Picker captures one screen position through a full-screen overlay.
type Picker struct {
	cfg PickerConfig

	mu      sync.Mutex
	session *pickSession
}

type pickSession struct {
	onPicked func(Point)
	onClosed func()

	cancelShow CancelFunc
	monitors   []Monitor
	finished   bool
}

func NewPicker(cfg PickerConfig) (*Picker, error) {
	if cfg.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if cfg.Surface == nil {
		return nil, errors.New("surface is required")
	}
	if cfg.Pointer == nil {
		return nil, errors.New("pointer is required")
	}
	if cfg.Global == nil {
		cfg.Global = NoGlobalMonitors
	}
	if cfg.Local == nil {
		cfg.Local = NoLocalMonitors
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger{}
	}
	if cfg.ShowDelay <= 0 {
		cfg.ShowDelay = PickerShowDelay
	}
	if cfg.RestoreDelay <= 0 {
		cfg.RestoreDelay = PickerRestoreDelay
	}
	return &Picker{cfg: cfg}, nil
}

func (p *Picker) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// Open hides the main window and shows the overlay after ShowDelay. The next
// primary press calls onPicked with the top-left-origin pointer location.
// Escape or Cancel closes the picker without calling onPicked. onClosed runs
// once on every exit path. Either callback may be nil.
func (p *Picker) Open(onPicked func(Point), onClosed func()) error {
	p.mu.Lock()
	if p.session != nil {
		p.mu.Unlock()
		return ErrPickerActive
	}
	s := &pickSession{onPicked: onPicked, onClosed: onClosed}
	p.session = s
	p.mu.Unlock()

	p.cfg.Logger.Debug("position picker opened")
	p.cfg.Surface.HideMain()

	cancelShow := p.cfg.Executor.After(p.cfg.ShowDelay, func() {
		p.show(s)
	})

	p.mu.Lock()
	if s.finished {
		p.mu.Unlock()
		cancelShow()
		return nil
	}
	s.cancelShow = cancelShow
	p.mu.Unlock()
	return nil
}

// Cancel closes an open picker without picking. It is a no-op when closed.
func (p *Picker) Cancel() {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s != nil {
		p.finish(s, false)
	}
}

func (p *Picker) show(s *pickSession) {
	p.mu.Lock()
	if s.finished {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.cfg.Surface.ShowOverlay()

	monitors := []Monitor{
		p.cfg.Global.MonitorPresses(func(b Button) {
			if b != ButtonLeft {
				return
			}
			p.cfg.Executor.Post(func() {
				p.finish(s, true)
			})
		}),
		p.cfg.Local.MonitorPresses(func(b Button) bool {
			if b != ButtonLeft {
				return false
			}
			p.finish(s, true)
			return true
		}),
		p.cfg.Local.MonitorKeys(func(ev KeyEvent) bool {
			if ev.KeyCode != KeyEscape {
				return false
			}
			p.finish(s, false)
			return true
		}),
	}

	p.mu.Lock()
	if s.finished {
		p.mu.Unlock()
		for _, m := range monitors {
			m.Remove()
		}
		return
	}
	s.monitors = monitors
	p.mu.Unlock()
}

// finish tears a session down exactly once, whichever path gets here first.
func (p *Picker) finish(s *pickSession, picked bool) {
	p.mu.Lock()
	if s.finished {
		p.mu.Unlock()
		return
	}
	s.finished = true
	if p.session == s {
		p.session = nil
	}
	monitors := s.monitors
	s.monitors = nil
	cancelShow := s.cancelShow
	p.mu.Unlock()

	var pt Point
	if picked {
		pt = TopLeft(p.cfg.Pointer)
	}

	for _, m := range monitors {
		m.Remove()
	}
	if cancelShow != nil {
		cancelShow()
	}
	p.cfg.Surface.HideOverlay()

	if picked {
		p.cfg.Logger.Debug("position picker picked", "x", pt.X, "y", pt.Y)
		if s.onPicked != nil {
			s.onPicked(pt)
		}
	} else {
		p.cfg.Logger.Debug("position picker cancelled")
	}

	p.cfg.Executor.After(p.cfg.RestoreDelay, p.cfg.Surface.ShowMain)
	if s.onClosed != nil {
		s.onClosed()
	}
}
