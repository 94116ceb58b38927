// Package node implements a key agreement participant.
//
// Every node starts knowing only its own contribution. It announces it, then
// gossips its knowledge matrix until it holds the contribution of every other
// node. Node is a state machine:
//
//	Idle -> Announcing -> SteadyState -> Converged
//
// and Shutdown after Stop, from any state.
//
// Gossip
//
// Shortly after Start the node broadcasts a message signalling its own
// contribution. From PeriodicStart on it re-broadcasts every PeriodicInterval,
// signalling every contribution it holds, until its whole matrix is complete.
//
// On receipt the node records the sender as a neighbour, accepts the
// contributions the sender signalled and merges the sender's matrix. When the
// message taught it something, it relays to each neighbour the contributions
// the forwarding policy selects for that neighbour. A converged node answers
// senders whose matrix is still incomplete, since it no longer broadcasts.
//
// All timing goes through a sched.Scheduler, so the same code runs in virtual
// time for simulations and on the wall clock.
package node
