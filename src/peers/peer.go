package peers

import "fmt"

// Peer is a node we have heard from.
type Peer struct {
	ID      uint32
	NetAddr string
}

// NewPeer ...
func NewPeer(id uint32, netAddr string) Peer {
	return Peer{
		ID:      id,
		NetAddr: netAddr,
	}
}

// String ...
func (p Peer) String() string {
	return fmt.Sprintf("%d@%s", p.ID, p.NetAddr)
}

// ExcludePeer is used to exclude a single peer from a list of peers.
func ExcludePeer(peers []Peer, addr string) (int, []Peer) {
	index := -1
	otherPeers := make([]Peer, 0, len(peers))
	for i, p := range peers {
		if p.NetAddr != addr {
			otherPeers = append(otherPeers, p)
		} else {
			index = i
		}
	}
	return index, otherPeers
}
