package autoclicker

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrPickerActive     = errors.New("position picker is already open")
	ErrPermissionDenied = errors.New("input injection permission not granted")
)

const (
	// MinInterval bounds the repeat period so a zero interval cannot busy-loop.
	MinInterval = time.Millisecond

	PickerShowDelay    = 300 * time.Millisecond
	PickerRestoreDelay = 100 * time.Millisecond
)

type Point struct {
	X float64
	Y float64
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "left"
	}
}

func ParseButton(raw string) (Button, bool) {
	switch strings.TrimSpace(raw) {
	case "left", "左键":
		return ButtonLeft, true
	case "right", "右键":
		return ButtonRight, true
	case "middle", "中键":
		return ButtonMiddle, true
	}
	return ButtonLeft, false
}

type PositionMode int

const (
	PositionCurrentMouse PositionMode = iota
	PositionFixed
)

func (m PositionMode) String() string {
	if m == PositionFixed {
		return "fixedPosition"
	}
	return "currentMouse"
}

func ParsePositionMode(raw string) (PositionMode, bool) {
	switch strings.TrimSpace(raw) {
	case "currentMouse", "当前鼠标位置":
		return PositionCurrentMouse, true
	case "fixedPosition", "指定位置":
		return PositionFixed, true
	}
	return PositionCurrentMouse, false
}

type IntervalUnit int

const (
	UnitMilliseconds IntervalUnit = iota
	UnitSeconds
)

func (u IntervalUnit) String() string {
	if u == UnitSeconds {
		return "seconds"
	}
	return "milliseconds"
}

func ParseIntervalUnit(raw string) (IntervalUnit, bool) {
	switch strings.TrimSpace(raw) {
	case "milliseconds", "ms", "毫秒":
		return UnitMilliseconds, true
	case "seconds", "s", "秒":
		return UnitSeconds, true
	}
	return UnitMilliseconds, false
}

// State is the scheduler state. StatePaused is reserved and never entered.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

type StopReason string

const (
	ReasonNone     StopReason = ""
	ReasonManual   StopReason = "manual"
	ReasonLimit    StopReason = "limit"
	ReasonHotkey   StopReason = "hotkey"
	ReasonShutdown StopReason = "shutdown"
)

type KeyEvent struct {
	KeyCode   int
	Modifiers ModifierMask
}

// Injector synthesizes a press followed by a release of button at p.
// p uses a top-left origin.
type Injector interface {
	Click(p Point, button Button) error
}

// Pointer reports the pointer in bottom-left-origin screen space.
type Pointer interface {
	Location() Point
	ScreenHeight() float64
}

type PermissionGate interface {
	Granted() bool
}

type Store interface {
	Load() (Settings, Binding)
	Save(settings Settings, binding Binding) error
}

// Monitor is a registered listener. Remove is idempotent.
type Monitor interface {
	Remove()
}

// GlobalMonitors deliver events regardless of which application has focus.
// They cannot consume events.
type GlobalMonitors interface {
	MonitorKeys(fn func(KeyEvent)) Monitor
	MonitorPresses(fn func(Button)) Monitor
}

// LocalMonitors deliver events only while one of our windows is focused.
// A handler returning true consumes the event.
type LocalMonitors interface {
	MonitorKeys(fn func(KeyEvent) bool) Monitor
	MonitorPresses(fn func(Button) bool) Monitor
}

// KeyGrabber is implemented by global monitors that only observe keys they
// explicitly grabbed.
type KeyGrabber interface {
	GrabHotkey(binding Binding) error
}

// Surface is the window chrome the position picker drives.
type Surface interface {
	HideMain()
	ShowMain()
	ShowOverlay()
	HideOverlay()
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type onceMonitor struct {
	once   sync.Once
	remove func()
}

func (m *onceMonitor) Remove() {
	m.once.Do(func() {
		if m.remove != nil {
			m.remove()
		}
	})
}

// NewMonitor wraps remove so that it runs at most once.
func NewMonitor(remove func()) Monitor {
	return &onceMonitor{remove: remove}
}

type noMonitors struct{}

func (noMonitors) MonitorKeys(func(KeyEvent)) Monitor { return NewMonitor(nil) }

func (noMonitors) MonitorPresses(func(Button)) Monitor { return NewMonitor(nil) }

type noLocalMonitors struct{}

func (noLocalMonitors) MonitorKeys(func(KeyEvent) bool) Monitor { return NewMonitor(nil) }

func (noLocalMonitors) MonitorPresses(func(Button) bool) Monitor { return NewMonitor(nil) }

// NoGlobalMonitors and NoLocalMonitors stand in for a missing event source.
var (
	NoGlobalMonitors GlobalMonitors = noMonitors{}
	NoLocalMonitors  LocalMonitors  = noLocalMonitors{}
)
