package sched

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLoopRunsCallbacks(t *testing.T) {
	l := NewEventLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	var order []int

	l.ScheduleAfter(20*time.Millisecond, func() {
		order = append(order, 2)
		close(done)
	})
	l.ScheduleAfter(time.Millisecond, func() {
		order = append(order, 1)
	})

	go l.Run(ctx)

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out")
	}
	l.Shutdown()

	assert.Equal(t, []int{1, 2}, order)
	assert.GreaterOrEqual(t, l.Now(), 20*time.Millisecond)
}

func TestEventLoopCancel(t *testing.T) {
	l := NewEventLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fired := make(chan struct{}, 1)
	h := l.ScheduleAfter(10*time.Millisecond, func() { fired <- struct{}{} })
	require.True(t, h.Cancel())
	assert.False(t, h.Cancel())

	done := make(chan struct{})
	l.ScheduleAfter(50*time.Millisecond, func() { close(done) })

	go l.Run(ctx)
	<-done
	l.Shutdown()

	select {
	case <-fired:
		t.Fatal("cancelled callback ran")
	default:
	}
}

func TestEventLoopShutdownTwice(t *testing.T) {
	l := NewEventLoop()
	l.Shutdown()
	l.Shutdown()
	l.Run(context.Background())
}
