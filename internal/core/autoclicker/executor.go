package autoclicker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// CancelFunc stops a scheduled callback. Calling it more than once, or after
// the callback already ran, is a no-op.
type CancelFunc func()

// Executor runs callbacks one at a time on a single logical thread.
type Executor interface {
	Post(fn func())
	Every(period time.Duration, fn func()) CancelFunc
	After(delay time.Duration, fn func()) CancelFunc
}

// Loop is an Executor backed by one goroutine. Callbacks queued before Run is
// called are held until it starts.
type Loop struct {
	logger Logger

	mu      sync.Mutex
	pending []func()
	wakeCh  chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewLoop(logger Logger) *Loop {
	return &Loop{
		logger: logger,
		wakeCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case <-l.wakeCh:
		}

		for _, fn := range l.drain() {
			select {
			case <-l.stopCh:
				return
			default:
			}
			l.invoke(fn)
		}
	}
}

// Close stops Run. Callbacks still queued are dropped.
func (l *Loop) Close() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-l.stopCh:
		return
	default:
	}

	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// Every posts fn once per period. A tick is dropped while the previous one is
// still queued so a slow loop never builds a backlog.
func (l *Loop) Every(period time.Duration, fn func()) CancelFunc {
	if period <= 0 {
		period = MinInterval
	}

	var (
		cancelled atomic.Bool
		queued    atomic.Bool
		once      sync.Once
		stopCh    = make(chan struct{})
	)

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-l.stopCh:
				return
			case <-ticker.C:
			}
			if !queued.CompareAndSwap(false, true) {
				continue
			}
			l.Post(func() {
				queued.Store(false)
				if cancelled.Load() {
					return
				}
				fn()
			})
		}
	}()

	return func() {
		once.Do(func() {
			cancelled.Store(true)
			close(stopCh)
		})
	}
}

func (l *Loop) After(delay time.Duration, fn func()) CancelFunc {
	var cancelled atomic.Bool
	timer := time.AfterFunc(delay, func() {
		l.Post(func() {
			if cancelled.Load() {
				return
			}
			fn()
		})
	})
	return func() {
		if cancelled.CompareAndSwap(false, true) {
			timer.Stop()
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil && l.logger != nil {
			l.logger.Error("loop callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
