//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"autoclick/internal/core/autoclicker"
)

type keyGrab struct {
	keycode xproto.Keycode
	state   uint16
}

// Runtime talks to the X server for click injection, pointer queries and
// global hotkeys. Only grabbed keys are observed, so key monitors see the
// bound hotkey and nothing else.
type Runtime struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window
	height  float64
	logger  autoclicker.Logger

	mu            sync.Mutex
	nextID        int
	keyHandlers   map[int]func(autoclicker.KeyEvent)
	pressHandlers map[int]func(autoclicker.Button)
	grabbedKeys   []keyGrab
	buttonGrabbed bool

	injectMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewRuntime(logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	keybind.Initialize(xu)

	return &Runtime{
		xu:            xu,
		conn:          conn,
		rootWin:       xu.RootWin(),
		height:        float64(xu.Screen().HeightInPixels),
		logger:        logger,
		keyHandlers:   make(map[int]func(autoclicker.KeyEvent)),
		pressHandlers: make(map[int]func(autoclicker.Button)),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}, nil
}

func (r *Runtime) Start() error {
	go r.eventLoop()
	return nil
}

func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		r.mu.Lock()
		r.ungrabKeysLocked()
		r.ungrabButtonLocked()
		r.mu.Unlock()

		r.conn.Close()
		<-r.doneCh
	})
}

// Click warps the pointer to p and presses and releases button there.
func (r *Runtime) Click(p autoclicker.Point, button autoclicker.Button) error {
	r.injectMu.Lock()
	defer r.injectMu.Unlock()

	if err := xproto.WarpPointerChecked(
		r.conn,
		xproto.WindowNone,
		r.rootWin,
		0,
		0,
		0,
		0,
		clampToInt16(p.X),
		clampToInt16(p.Y),
	).Check(); err != nil {
		return err
	}

	detail := buttonIndex(button)
	for _, eventType := range []byte{xproto.ButtonPress, xproto.ButtonRelease} {
		if err := xtest.FakeInputChecked(
			r.conn,
			eventType,
			detail,
			xproto.TimeCurrentTime,
			r.rootWin,
			0,
			0,
			0,
		).Check(); err != nil {
			return err
		}
	}
	r.conn.Sync()
	return nil
}

// Location reports the pointer with a bottom-left origin.
func (r *Runtime) Location() autoclicker.Point {
	reply, err := xproto.QueryPointer(r.conn, r.rootWin).Reply()
	if err != nil {
		r.logger.Warn("Failed to query pointer", "err", err)
		return autoclicker.Point{}
	}
	return autoclicker.Point{X: float64(reply.RootX), Y: r.height - float64(reply.RootY)}
}

func (r *Runtime) ScreenHeight() float64 {
	return r.height
}

func (r *Runtime) MonitorKeys(fn func(autoclicker.KeyEvent)) autoclicker.Monitor {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.keyHandlers[id] = fn
	r.mu.Unlock()
	return autoclicker.NewMonitor(func() {
		r.mu.Lock()
		delete(r.keyHandlers, id)
		r.mu.Unlock()
	})
}

// MonitorPresses grabs the primary button on the root window while at least
// one press monitor is registered.
func (r *Runtime) MonitorPresses(fn func(autoclicker.Button)) autoclicker.Monitor {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.pressHandlers[id] = fn
	if !r.buttonGrabbed {
		if err := r.grabButtonLocked(); err != nil {
			r.logger.Warn("Failed to grab pointer button", "err", err)
		}
	}
	r.mu.Unlock()

	return autoclicker.NewMonitor(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.pressHandlers, id)
		if len(r.pressHandlers) == 0 {
			r.ungrabButtonLocked()
		}
	})
}

// GrabHotkey replaces the current key grab with binding. The grab covers every
// keycode producing the key and tolerates caps lock and num lock.
func (r *Runtime) GrabHotkey(binding autoclicker.Binding) error {
	name, ok := KeysymName(binding.KeyCode)
	if !ok {
		return fmt.Errorf("key %s has no X11 keysym", autoclicker.KeyName(binding.KeyCode))
	}

	keycodes := uniqueKeycodes(keybind.StrToKeycodes(r.xu, name))
	if len(keycodes) == 0 {
		return fmt.Errorf("failed to resolve X11 key %q", name)
	}

	state := StateFromModifiers(binding.Modifiers)
	grabs := make([]keyGrab, 0, len(keycodes)*len(lockVariants))
	for _, keycode := range keycodes {
		for _, lock := range lockVariants {
			grabs = append(grabs, keyGrab{keycode: keycode, state: state | lock})
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ungrabKeysLocked()
	for _, grab := range grabs {
		if err := xproto.GrabKeyChecked(
			r.conn,
			true,
			r.rootWin,
			grab.state,
			grab.keycode,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check(); err != nil {
			r.ungrabKeysLocked()
			return fmt.Errorf("failed to grab %s: %w", binding.Display, err)
		}
		r.grabbedKeys = append(r.grabbedKeys, grab)
	}
	r.logger.Debug("Grabbed X11 hotkey", "hotkey", binding.Display, "keysym", name, "keycodes", len(keycodes))
	return nil
}

func (r *Runtime) eventLoop() {
	defer close(r.doneCh)

	for {
		event, xerr := r.conn.WaitForEvent()
		if xerr != nil {
			select {
			case <-r.stopCh:
				return
			default:
			}
			r.logger.Warn("X11 event error", "err", xerr)
			continue
		}
		if event == nil {
			return
		}

		switch ev := event.(type) {
		case xproto.KeyPressEvent:
			name := keybind.LookupString(r.xu, 0, ev.Detail)
			key, ok := KeyFromKeysym(name)
			if !ok {
				continue
			}
			keyEvent := autoclicker.KeyEvent{KeyCode: key, Modifiers: ModifiersFromState(ev.State)}
			for _, fn := range r.keyCallbacks() {
				fn(keyEvent)
			}
		case xproto.ButtonPressEvent:
			button, ok := buttonFromIndex(byte(ev.Detail))
			if !ok {
				continue
			}
			for _, fn := range r.pressCallbacks() {
				fn(button)
			}
		}
	}
}

func (r *Runtime) keyCallbacks() []func(autoclicker.KeyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.keyHandlers))
	for id := range r.keyHandlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.KeyEvent), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.keyHandlers[id])
	}
	return out
}

func (r *Runtime) pressCallbacks() []func(autoclicker.Button) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.pressHandlers))
	for id := range r.pressHandlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(autoclicker.Button), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.pressHandlers[id])
	}
	return out
}

func (r *Runtime) grabButtonLocked() error {
	if err := xproto.GrabButtonChecked(
		r.conn,
		false,
		r.rootWin,
		xproto.EventMaskButtonPress,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.ButtonIndex1,
		xproto.ModMaskAny,
	).Check(); err != nil {
		return err
	}
	r.buttonGrabbed = true
	return nil
}

func (r *Runtime) ungrabButtonLocked() {
	if !r.buttonGrabbed {
		return
	}
	xproto.UngrabButton(r.conn, xproto.ButtonIndex1, r.rootWin, xproto.ModMaskAny)
	r.buttonGrabbed = false
}

func (r *Runtime) ungrabKeysLocked() {
	for _, grab := range r.grabbedKeys {
		xproto.UngrabKey(r.conn, grab.keycode, r.rootWin, grab.state)
	}
	r.grabbedKeys = nil
}

func uniqueKeycodes(keycodes []xproto.Keycode) []xproto.Keycode {
	uniq := make(map[xproto.Keycode]struct{}, len(keycodes))
	for _, keycode := range keycodes {
		uniq[keycode] = struct{}{}
	}
	result := make([]xproto.Keycode, 0, len(uniq))
	for key := range uniq {
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
