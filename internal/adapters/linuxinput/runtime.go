//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"autoclick/internal/core/autoclicker"
)

type RuntimeConfig struct {
	// DevicePaths limits listening to these devices. Empty means every
	// physical keyboard and pointer.
	DevicePaths []string
}

// Runtime reads physical input devices for global hotkeys and injects clicks
// through a uinput virtual mouse. Works under Wayland, where the pointer
// position can be neither read nor set.
type Runtime struct {
	sourceDevices []*evdev.InputDevice
	injector      *Injector
	dispatch      *dispatcher
	logger        autoclicker.Logger

	stopCh    chan struct{}
	stopOnce  sync.Once
	readersWG sync.WaitGroup
}

func NewRuntime(cfg RuntimeConfig, logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	devices, err := OpenSources(cfg.DevicePaths)
	if err != nil {
		return nil, err
	}

	injector, err := NewInjector(logger)
	if err != nil {
		closeInputDevices(devices)
		return nil, err
	}

	return &Runtime{
		sourceDevices: devices,
		injector:      injector,
		dispatch:      newDispatcher(logger),
		logger:        logger,
		stopCh:        make(chan struct{}),
	}, nil
}

func (r *Runtime) Start() error {
	for _, dev := range r.sourceDevices {
		name, _ := dev.Name()
		r.logger.Debug("Listening on input device", "path", dev.Path(), "name", name)
		r.readersWG.Add(1)
		go r.readLoop(dev)
	}
	return nil
}

func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		for _, dev := range r.sourceDevices {
			_ = dev.Close()
		}
		r.readersWG.Wait()
		_ = r.injector.Close()
	})
}

func (r *Runtime) Injector() autoclicker.Injector {
	return r.injector
}

func (r *Runtime) Monitors() autoclicker.GlobalMonitors {
	return r.dispatch
}

func (r *Runtime) readLoop(dev *evdev.InputDevice) {
	defer r.readersWG.Done()

	path := dev.Path()
	defer r.dispatch.dropSource(path)
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if r.stopped() || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !r.sleepWithStop(10 * time.Millisecond) {
					return
				}
				continue
			}
			r.logger.Warn("Read failed", "path", path, "err", err)
			if !r.sleepWithStop(100 * time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			if r.stopped() {
				return
			}
			r.dispatch.handleEvent(path, event)
		}
	}
}

func (r *Runtime) stopped() bool {
	select {
	case <-r.stopCh:
		return true
	default:
		return false
	}
}

func (r *Runtime) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-r.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
