//go:build linux

package linuxinput

import (
	"fmt"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"autoclick/internal/core/autoclicker"
)

// pressHold keeps the button down long enough for compositors that debounce
// zero-length clicks.
const pressHold = 5 * time.Millisecond

// Injector clicks through a uinput virtual mouse. The compositor owns the
// pointer, so clicks land wherever the pointer is and the requested point is
// ignored.
type Injector struct {
	logger autoclicker.Logger

	mu  sync.Mutex
	dev *evdev.InputDevice
}

func NewInjector(logger autoclicker.Logger) (*Injector, error) {
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE},
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
	}
	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}

	dev, err := evdev.CreateDevice(virtualDeviceName, id, capabilities)
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput device: %w", err)
	}
	return &Injector{logger: logger, dev: dev}, nil
}

func (e *Injector) Click(_ autoclicker.Point, button autoclicker.Button) error {
	code, ok := injectCodes[button]
	if !ok {
		return fmt.Errorf("unsupported button %v", button)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dev == nil {
		return fmt.Errorf("injector is closed")
	}

	if err := e.write(code, 1); err != nil {
		return err
	}
	time.Sleep(pressHold)
	return e.write(code, 0)
}

func (e *Injector) write(code evdev.EvCode, value int32) error {
	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: code, Value: value},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	}
	for i := range events {
		if err := e.dev.WriteOne(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Injector) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dev == nil {
		return nil
	}
	err := e.dev.Close()
	e.dev = nil
	return err
}
