package sched

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// EventLoop is a wall-clock Scheduler. Timers fire on their own goroutines
// but only post the callback to the loop; callbacks run one at a time on the
// goroutine that calls Run.
type EventLoop struct {
	start      time.Time
	taskCh     chan func() // receives callbacks whose timer fired
	shutdownCh chan struct{}
	closeOnce  sync.Once
}

// NewEventLoop returns an EventLoop whose clock starts now.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		start:      time.Now(),
		taskCh:     make(chan func(), 64),
		shutdownCh: make(chan struct{}),
	}
}

const (
	taskPending uint32 = iota
	taskRan
	taskCancelled
)

type loopHandle struct {
	timer *time.Timer
	state *atomic.Uint32
}

func (h loopHandle) Cancel() bool {
	if !h.state.CompareAndSwap(taskPending, taskCancelled) {
		return false
	}
	h.timer.Stop()
	return true
}

// ScheduleAfter implements Scheduler.
func (l *EventLoop) ScheduleAfter(d time.Duration, f func()) Handle {
	if d < 0 {
		d = 0
	}
	h := loopHandle{
		state: atomic.NewUint32(taskPending),
	}
	task := func() {
		if !h.state.CompareAndSwap(taskPending, taskRan) {
			return
		}
		f()
	}
	h.timer = time.AfterFunc(d, func() {
		select {
		case l.taskCh <- task:
		case <-l.shutdownCh:
		}
	})
	return h
}

// Now implements Scheduler.
func (l *EventLoop) Now() time.Duration {
	return time.Since(l.start)
}

// Run executes callbacks until ctx is done or Shutdown is called.
func (l *EventLoop) Run(ctx context.Context) {
	for {
		select {
		case task := <-l.taskCh:
			task()
		case <-ctx.Done():
			return
		case <-l.shutdownCh:
			return
		}
	}
}

// Shutdown stops Run and drops callbacks that have not run yet.
func (l *EventLoop) Shutdown() {
	l.closeOnce.Do(func() {
		close(l.shutdownCh)
	})
}
