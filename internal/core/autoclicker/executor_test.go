package autoclicker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop(noopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return loop
}

func TestLoopRunsPostedCallbacksInOrder(t *testing.T) {
	loop := startLoop(t)

	got := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		loop.Post(func() { got <- i })
	}

	for want := 0; want < 3; want++ {
		select {
		case v := <-got:
			if v != want {
				t.Fatalf("callback %d ran at position %d", v, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for callback %d", want)
		}
	}
}

func TestLoopPostFromCallbackDoesNotBlock(t *testing.T) {
	loop := startLoop(t)

	done := make(chan struct{})
	loop.Post(func() {
		for i := 0; i < 1000; i++ {
			loop.Post(func() {})
		}
		loop.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("nested posts did not drain")
	}
}

func TestLoopEveryStopsAfterCancel(t *testing.T) {
	loop := startLoop(t)

	var ticks atomic.Int32
	cancel := loop.Every(5*time.Millisecond, func() { ticks.Add(1) })

	deadline := time.Now().Add(time.Second)
	for ticks.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d ticks before deadline", ticks.Load())
		}
		time.Sleep(time.Millisecond)
	}

	stopped := make(chan int32, 1)
	loop.Post(func() {
		cancel()
		cancel()
		stopped <- ticks.Load()
	})
	atCancel := <-stopped

	time.Sleep(40 * time.Millisecond)
	if got := ticks.Load(); got != atCancel {
		t.Fatalf("ticks after cancel: %d, want %d", got, atCancel)
	}
}

func TestLoopAfterCancelledNeverRuns(t *testing.T) {
	loop := startLoop(t)

	var ran atomic.Bool
	cancel := loop.After(10*time.Millisecond, func() { ran.Store(true) })
	cancel()
	cancel()

	fired := make(chan struct{})
	loop.After(20*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for second timer")
	}
	if ran.Load() {
		t.Fatalf("cancelled callback ran")
	}
}

func TestLoopRecoversFromPanickingCallback(t *testing.T) {
	loop := startLoop(t)

	done := make(chan struct{})
	loop.Post(func() { panic("boom") })
	loop.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("loop stopped after a panicking callback")
	}
}

func TestLoopCloseStopsRun(t *testing.T) {
	loop := NewLoop(noopLogger{})
	go loop.Run(context.Background())

	loop.Close()
	loop.Close()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after Close")
	}
	loop.Post(func() { t.Errorf("callback ran after Close") })
}
