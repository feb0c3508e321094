package settings

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"autoclick/internal/core/autoclicker"
)

const (
	keyClickCount   = "clickCount"
	keyInterval     = "clickInterval"
	keyIntervalUnit = "clickIntervalUnit"
	keyButton       = "clickButton"
	keyPositionMode = "positionMode"
	keyFixedX       = "fixedX"
	keyFixedY       = "fixedY"
	keyHotkeyCode   = "hotKeyKeyCode"
	keyHotkeyMods   = "hotKeyModifiers"
	keyHotkeyLabel  = "hotKeyDisplay"
)

// FileStore persists settings as flat key-value pairs in a TOML file.
type FileStore struct {
	path   string
	logger autoclicker.Logger

	mu sync.Mutex
}

// DefaultPath is settings.toml under the user config directory, or a dot
// file in the working directory when no config directory is known.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", ".autoclick-settings.toml")
	}
	return filepath.Join(configDir, "autoclick", "settings.toml")
}

func NewFileStore(path string, logger autoclicker.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load never fails. Missing or unreadable files yield defaults.
func (s *FileStore) Load() (autoclicker.Settings, autoclicker.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]any)
	if _, err := toml.DecodeFile(s.path, &values); err != nil {
		if !errors.Is(err, os.ErrNotExist) && s.logger != nil {
			s.logger.Warn("failed to read settings, using defaults", "path", s.path, "err", err)
		}
		return Decode(nil)
	}
	return Decode(values)
}

func (s *FileStore) Save(settings autoclicker.Settings, binding autoclicker.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(Encode(settings, binding)); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

func Encode(settings autoclicker.Settings, binding autoclicker.Binding) map[string]any {
	return map[string]any{
		keyClickCount:   int64(settings.ClickCount),
		keyInterval:     settings.Interval,
		keyIntervalUnit: settings.IntervalUnit.String(),
		keyButton:       settings.Button.String(),
		keyPositionMode: settings.PositionMode.String(),
		keyFixedX:       settings.FixedX,
		keyFixedY:       settings.FixedY,
		keyHotkeyCode:   int64(binding.KeyCode),
		keyHotkeyMods:   int64(binding.Modifiers),
		keyHotkeyLabel:  binding.Display,
	}
}

// Decode maps stored values onto settings. Absent, malformed and zero values
// fall back to the defaults, except a stored click count of 0 which means
// unlimited.
func Decode(values map[string]any) (autoclicker.Settings, autoclicker.Binding) {
	settings := autoclicker.DefaultSettings()

	if n, ok := intValue(values[keyClickCount]); ok && n >= 0 {
		settings.ClickCount = int(n)
	}
	if f, ok := floatValue(values[keyInterval]); ok && f > 0 {
		settings.Interval = f
	}
	if raw, ok := values[keyIntervalUnit].(string); ok {
		if unit, ok := autoclicker.ParseIntervalUnit(raw); ok {
			settings.IntervalUnit = unit
		}
	}
	if raw, ok := values[keyButton].(string); ok {
		if button, ok := autoclicker.ParseButton(raw); ok {
			settings.Button = button
		}
	}
	if raw, ok := values[keyPositionMode].(string); ok {
		if mode, ok := autoclicker.ParsePositionMode(raw); ok {
			settings.PositionMode = mode
		}
	}
	if f, ok := floatValue(values[keyFixedX]); ok {
		settings.FixedX = f
	}
	if f, ok := floatValue(values[keyFixedY]); ok {
		settings.FixedY = f
	}

	return settings.Clamped(), decodeBinding(values)
}

// decodeBinding treats the key code and modifiers as one unit: a binding with
// neither stored falls back to the default.
func decodeBinding(values map[string]any) autoclicker.Binding {
	code, hasCode := intValue(values[keyHotkeyCode])
	mods, hasMods := intValue(values[keyHotkeyMods])
	if (!hasCode || code == 0) && (!hasMods || mods == 0) {
		return autoclicker.DefaultBinding()
	}
	if code < 0 || mods < 0 || mods > math.MaxUint32 {
		return autoclicker.DefaultBinding()
	}

	binding := autoclicker.NewBinding(int(code), autoclicker.ModifierMask(mods))
	if display, ok := values[keyHotkeyLabel].(string); ok && display != "" {
		binding.Display = display
	}
	return binding
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}
