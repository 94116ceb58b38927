package sched

import "time"

// Handle refers to a scheduled callback.
type Handle interface {
	// Cancel prevents the callback from running. It returns false if the
	// callback already ran or was already cancelled.
	Cancel() bool
}

// Scheduler runs callbacks after a delay, on a single logical thread.
type Scheduler interface {
	// ScheduleAfter arranges for f to run d after Now(). Negative delays are
	// treated as zero.
	ScheduleAfter(d time.Duration, f func()) Handle

	// Now returns the time elapsed since the scheduler was created.
	Now() time.Duration
}
