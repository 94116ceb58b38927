package sched

import (
	"container/heap"
	"sync"
	"time"
)

type event struct {
	at        time.Duration
	seq       uint64
	f         func()
	cancelled bool
	done      bool
	index     int
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventQueue) Push(x interface{}) {
	e := x.(*event)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// Simulator is a discrete-event scheduler with a virtual clock. Events run in
// time order, and in scheduling order for equal times. The clock jumps from
// one event to the next, so a simulated minute costs only the work done in
// the callbacks.
type Simulator struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	queue   eventQueue
	stopped bool
	handled uint64
}

// NewSimulator returns a Simulator at virtual time zero.
func NewSimulator() *Simulator {
	return &Simulator{}
}

type simHandle struct {
	sim *Simulator
	e   *event
}

func (h simHandle) Cancel() bool {
	h.sim.mu.Lock()
	defer h.sim.mu.Unlock()

	if h.e.cancelled || h.e.done {
		return false
	}
	h.e.cancelled = true
	if h.e.index >= 0 {
		heap.Remove(&h.sim.queue, h.e.index)
	}
	return true
}

// ScheduleAfter implements Scheduler.
func (s *Simulator) ScheduleAfter(d time.Duration, f func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	e := &event{
		at:  s.now + d,
		seq: s.seq,
		f:   f,
	}
	s.seq++
	heap.Push(&s.queue, e)
	return simHandle{sim: s, e: e}
}

// Now implements Scheduler.
func (s *Simulator) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of queued events.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Handled returns the number of events run so far.
func (s *Simulator) Handled() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handled
}

// Stop makes Run return once the current event completes.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Run executes events until the queue is empty, Stop is called, or the next
// event is due after until. When it returns because of until, the clock is
// left at until.
func (s *Simulator) Run(until time.Duration) {
	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		if s.queue.Len() == 0 {
			s.mu.Unlock()
			return
		}
		if s.queue[0].at > until {
			s.now = until
			s.mu.Unlock()
			return
		}
		e := heap.Pop(&s.queue).(*event)
		e.done = true
		s.now = e.at
		s.handled++
		s.mu.Unlock()

		e.f()
	}
}
