package main

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"autoclick/internal/core/autoclicker"
	"autoclick/internal/history"
	"autoclick/internal/settings"
)

// backend bundles what one input backend provides.
type backend struct {
	name     string
	injector autoclicker.Injector
	pointer  autoclicker.Pointer
	global   autoclicker.GlobalMonitors
	gate     autoclicker.PermissionGate
	stop     func()

	// tracked is set when the backend cannot read the pointer itself and
	// relies on positions reported by our own windows.
	tracked *trackedPointer
}

type grantedGate struct{}

func (grantedGate) Granted() bool { return true }

// session owns the executor loop, the controller and its persistence.
type session struct {
	backend  *backend
	loop     *autoclicker.Loop
	store    *settings.FileStore
	ctrl     *autoclicker.Controller
	db       *history.DB
	recorder *history.Recorder
	picker   *autoclicker.Picker
	logger   *slog.Logger

	unsubscribe []func()
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

func newSession(cfg config, logger *slog.Logger) (*session, error) {
	b, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	loop := autoclicker.NewLoop(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	store := settings.NewFileStore(cfg.settingsPath, logger)
	ctrl, err := autoclicker.NewController(autoclicker.Config{
		Executor: loop,
		Injector: b.injector,
		Pointer:  b.pointer,
		Store:    store,
		Logger:   logger,
	})
	if err != nil {
		cancel()
		loop.Close()
		b.stop()
		return nil, err
	}

	s := &session{
		backend: b,
		loop:    loop,
		store:   store,
		ctrl:    ctrl,
		logger:  logger,
		cancel:  cancel,
	}

	if !cfg.noHistory {
		db, err := history.Open(cfg.historyPath)
		if err != nil {
			logger.Warn("Click history disabled", "path", cfg.historyPath, "err", err)
		} else {
			s.db = db
			s.recorder = history.NewRecorder(db, logger)
			s.unsubscribe = append(s.unsubscribe, ctrl.Subscribe(s.recorder.Observe))
		}
	}

	if b.tracked != nil {
		s.unsubscribe = append(s.unsubscribe, ctrl.Subscribe(fixedPositionWarning(logger, b.name)))
	}

	if !cfg.overrides.empty() {
		ctrl.UpdateSettings(cfg.overrides.apply)
	}

	logger.Debug("Settings loaded", "path", store.Path())
	return s, nil
}

// fixedPositionWarning logs once when a fixed-position run starts on a
// backend that clicks wherever the pointer already is.
func fixedPositionWarning(logger *slog.Logger, backendName string) func(autoclicker.Snapshot) {
	var warned atomic.Bool
	return func(snap autoclicker.Snapshot) {
		if snap.State != autoclicker.StateRunning || snap.Settings.PositionMode != autoclicker.PositionFixed {
			return
		}
		if warned.CompareAndSwap(false, true) {
			logger.Warn("Backend cannot move the pointer; clicks land at the current pointer position",
				"backend", backendName)
		}
	}
}

func (s *session) Close() {
	s.closeOnce.Do(func() {
		if s.picker != nil {
			s.picker.Cancel()
		}
		s.ctrl.Close()
		for _, fn := range s.unsubscribe {
			fn()
		}
		if s.recorder != nil {
			s.recorder.Close()
		}
		if s.db != nil {
			if err := s.db.Close(); err != nil {
				s.logger.Warn("Failed to close history", "err", err)
			}
		}
		s.cancel()
		s.loop.Close()
		<-s.loop.Done()
		s.backend.stop()
	})
}
