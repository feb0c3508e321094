package history

import (
	"context"
	"sync"
	"time"

	"autoclick/internal/core/autoclicker"
)

type inserter interface {
	Insert(ctx context.Context, r *Run) error
}

// Recorder turns controller snapshots into history rows. Rows are written on
// a background goroutine so subscribers never block on disk.
type Recorder struct {
	db     inserter
	logger autoclicker.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *Run

	runsCh   chan Run
	stopOnce sync.Once
	closeCh  chan struct{}
	doneCh   chan struct{}
}

func NewRecorder(db inserter, logger autoclicker.Logger) *Recorder {
	r := &Recorder{
		db:      db,
		logger:  logger,
		now:     time.Now,
		runsCh:  make(chan Run, 64),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Observe is a controller subscriber.
func (r *Recorder) Observe(snap autoclicker.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch snap.State {
	case autoclicker.StateRunning:
		if r.current == nil {
			r.current = &Run{
				StartedAt:    r.now(),
				ClickLimit:   snap.Settings.ClickCount,
				IntervalMs:   snap.Settings.IntervalMilliseconds(),
				Button:       snap.Settings.Button.String(),
				PositionMode: snap.Settings.PositionMode.String(),
			}
		}
		r.current.Clicks = snap.ClickCount
	case autoclicker.StateStopped:
		if r.current == nil {
			return
		}
		run := *r.current
		r.current = nil
		run.EndedAt = r.now()
		run.Reason = string(snap.Reason)

		select {
		case r.runsCh <- run:
		default:
			r.logger.Warn("history queue full, dropping run", "clicks", run.Clicks)
		}
	}
}

// Close flushes queued runs and stops the writer.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.closeCh)
	})
	<-r.doneCh
}

func (r *Recorder) loop() {
	defer close(r.doneCh)
	for {
		select {
		case run := <-r.runsCh:
			r.write(run)
		case <-r.closeCh:
			for {
				select {
				case run := <-r.runsCh:
					r.write(run)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(run Run) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.db.Insert(ctx, &run); err != nil {
		r.logger.Warn("failed to record run", "err", err)
		return
	}
	r.logger.Debug("run recorded", "id", run.ID, "clicks", run.Clicks, "reason", run.Reason)
}
