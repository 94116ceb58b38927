package peers

import "sync"

// NeighborSet keeps the most recently heard peers, oldest first. Identity is
// the network address.
type NeighborSet struct {
	sync.RWMutex
	capacity int
	sorted   []Peer
}

// NewNeighborSet returns an empty set sized for an n-node network, ie. with a
// capacity of ⌊n/2⌋.
func NewNeighborSet(n uint32) *NeighborSet {
	capacity := int(n / 2)
	return &NeighborSet{
		capacity: capacity,
		sorted:   make([]Peer, 0, capacity+1),
	}
}

// Touch records that we just heard from peer. A known peer moves to the most
// recent position, and takes the ID it reports now; a new peer is appended,
// evicting the oldest one if the set would exceed its capacity. It returns the
// evicted peer, if any.
func (s *NeighborSet) Touch(peer Peer) (evicted *Peer) {
	s.Lock()
	defer s.Unlock()

	if s.capacity == 0 {
		return nil
	}

	if index, others := ExcludePeer(s.sorted, peer.NetAddr); index >= 0 {
		s.sorted = append(others, peer)
		return nil
	}

	s.sorted = append(s.sorted, peer)
	if len(s.sorted) > s.capacity {
		head := s.sorted[0]
		s.sorted = append(s.sorted[:0], s.sorted[1:]...)
		return &head
	}
	return nil
}

// Peers returns a copy of the set, oldest first.
func (s *NeighborSet) Peers() []Peer {
	s.RLock()
	defer s.RUnlock()

	res := make([]Peer, len(s.sorted))
	copy(res, s.sorted)
	return res
}

// Contains reports whether addr is in the set.
func (s *NeighborSet) Contains(addr string) bool {
	s.RLock()
	defer s.RUnlock()

	for _, p := range s.sorted {
		if p.NetAddr == addr {
			return true
		}
	}
	return false
}

// Len ...
func (s *NeighborSet) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.sorted)
}

// Cap returns the fixed capacity.
func (s *NeighborSet) Cap() int {
	return s.capacity
}
