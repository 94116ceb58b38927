package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulatorOrder(t *testing.T) {
	s := NewSimulator()

	var order []string
	var times []time.Duration
	record := func(name string) func() {
		return func() {
			order = append(order, name)
			times = append(times, s.Now())
		}
	}

	s.ScheduleAfter(30*time.Millisecond, record("c"))
	s.ScheduleAfter(10*time.Millisecond, record("a"))
	s.ScheduleAfter(10*time.Millisecond, record("b"))
	s.ScheduleAfter(-5*time.Millisecond, record("zero"))

	s.Run(time.Second)

	assert.Equal(t, []string{"zero", "a", "b", "c"}, order)
	assert.Equal(t, []time.Duration{0, 10 * time.Millisecond, 10 * time.Millisecond, 30 * time.Millisecond}, times)
	assert.Equal(t, uint64(4), s.Handled())
}

func TestSimulatorNestedScheduling(t *testing.T) {
	s := NewSimulator()

	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		s.ScheduleAfter(100*time.Millisecond, tick)
	}
	s.ScheduleAfter(0, tick)

	s.Run(time.Second)

	// ticks at 0, 100ms, ..., 1s
	assert.Equal(t, 11, ticks)
	assert.Equal(t, time.Second, s.Now())
	assert.Equal(t, 1, s.Pending())
}

func TestSimulatorCancel(t *testing.T) {
	s := NewSimulator()

	ran := false
	h := s.ScheduleAfter(time.Millisecond, func() { ran = true })
	other := s.ScheduleAfter(2*time.Millisecond, func() {})

	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())
	assert.Equal(t, 1, s.Pending())

	s.Run(time.Second)
	assert.False(t, ran)
	assert.False(t, other.Cancel(), "already ran")
}

func TestSimulatorStop(t *testing.T) {
	s := NewSimulator()

	count := 0
	for i := 1; i <= 5; i++ {
		i := i
		s.ScheduleAfter(time.Duration(i)*time.Millisecond, func() {
			count++
			if i == 3 {
				s.Stop()
			}
		})
	}

	s.Run(time.Second)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3*time.Millisecond, s.Now())

	// Run resumes after a Stop
	s.Run(time.Second)
	assert.Equal(t, 5, count)
}
