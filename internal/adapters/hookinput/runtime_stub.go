//go:build !cgo

package hookinput

import (
	"fmt"

	"autoclick/internal/core/autoclicker"
)

var errNoCgo = fmt.Errorf("hook input runtime requires cgo")

type Runtime struct{}

func NewRuntime(logger autoclicker.Logger) (*Runtime, error) {
	return nil, errNoCgo
}

func (r *Runtime) Start() error {
	return errNoCgo
}

func (r *Runtime) Stop() {}

func (r *Runtime) Click(autoclicker.Point, autoclicker.Button) error {
	return errNoCgo
}

func (r *Runtime) Location() autoclicker.Point {
	return autoclicker.Point{}
}

func (r *Runtime) ScreenHeight() float64 {
	return 0
}

func (r *Runtime) MonitorKeys(func(autoclicker.KeyEvent)) autoclicker.Monitor {
	return autoclicker.NewMonitor(nil)
}

func (r *Runtime) MonitorPresses(func(autoclicker.Button)) autoclicker.Monitor {
	return autoclicker.NewMonitor(nil)
}
