package node

import (
	"sync/atomic"
)

// State captures the state of a node: Idle, Announcing, SteadyState,
// Converged, or Shutdown
type State uint32

const (
	// Idle is the state of a node that has not been started. It already
	// accepts messages.
	Idle State = iota
	// Announcing is between Start and the first periodic broadcast.
	Announcing
	// SteadyState broadcasts periodically and relays on receipt.
	SteadyState
	// Converged is reached when the whole matrix is known. Periodic
	// broadcasts stop, relays continue.
	Converged
	// Shutdown is shutdown
	Shutdown
)

// String ...
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Announcing:
		return "Announcing"
	case SteadyState:
		return "SteadyState"
	case Converged:
		return "Converged"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

type state struct {
	state State
}

func (b *state) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *state) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// casState moves from old to s and reports whether it did.
func (b *state) casState(old, s State) bool {
	stateAddr := (*uint32)(&b.state)
	return atomic.CompareAndSwapUint32(stateAddr, uint32(old), uint32(s))
}
