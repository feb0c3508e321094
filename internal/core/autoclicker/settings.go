package autoclicker

import (
	"sync"
	"time"
)

// Settings are the user-configurable click parameters.
type Settings struct {
	// ClickCount is the number of clicks per run; 0 means unlimited.
	ClickCount   int
	Interval     float64
	IntervalUnit IntervalUnit
	Button       Button
	PositionMode PositionMode
	// FixedX and FixedY use a top-left origin and only apply to PositionFixed.
	FixedX float64
	FixedY float64
}

func DefaultSettings() Settings {
	return Settings{
		ClickCount:   1,
		Interval:     100,
		IntervalUnit: UnitMilliseconds,
		Button:       ButtonLeft,
		PositionMode: PositionCurrentMouse,
	}
}

func (s Settings) IntervalMilliseconds() float64 {
	if s.IntervalUnit == UnitSeconds {
		return s.Interval * 1000
	}
	return s.Interval
}

// Period is the timer period for a run, never shorter than MinInterval.
func (s Settings) Period() time.Duration {
	period := time.Duration(s.IntervalMilliseconds() * float64(time.Millisecond))
	if period < MinInterval {
		return MinInterval
	}
	return period
}

// Clamped returns s with negative numeric fields raised to 0.
func (s Settings) Clamped() Settings {
	if s.ClickCount < 0 {
		s.ClickCount = 0
	}
	if s.Interval < 0 {
		s.Interval = 0
	}
	if s.FixedX < 0 {
		s.FixedX = 0
	}
	if s.FixedY < 0 {
		s.FixedY = 0
	}
	return s
}

func (s Settings) FixedPoint() Point {
	return Point{X: s.FixedX, Y: s.FixedY}
}

// MemoryStore is a Store that keeps everything in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	settings Settings
	binding  Binding
	saves    int
}

func NewMemoryStore(settings Settings, binding Binding) *MemoryStore {
	return &MemoryStore{settings: settings, binding: binding}
}

func (m *MemoryStore) Load() (Settings, Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, m.binding
}

func (m *MemoryStore) Save(settings Settings, binding Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	m.binding = binding
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
