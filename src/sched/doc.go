// Package sched provides the clock and timer service the protocol runs on.
//
// Nodes never block or sleep. Every delayed action (the announce, the
// periodic broadcast, a jittered relay) is registered with a Scheduler and
// runs later as a callback. Two implementations are provided:
//
//	Simulator  // discrete-event, virtual time, deterministic
//	EventLoop  // wall-clock time, callbacks serialised on one goroutine
//
// Both run callbacks one at a time, so code scheduled on them needs no
// locking of its own.
package sched
