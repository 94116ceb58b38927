package peers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(i int) string {
	return fmt.Sprintf("10.1.1.%d", i+1)
}

func touchAll(s *NeighborSet, ids ...int) {
	for _, i := range ids {
		s.Touch(NewPeer(uint32(i), addr(i)))
	}
}

func addrs(ps []Peer) []string {
	res := make([]string, len(ps))
	for i, p := range ps {
		res[i] = p.NetAddr
	}
	return res
}

func TestCapacity(t *testing.T) {
	for n, c := range map[uint32]int{1: 0, 2: 1, 3: 1, 4: 2, 10: 5, 11: 5} {
		assert.Equal(t, c, NewNeighborSet(n).Cap(), "n=%d", n)
	}
}

func TestKeepsMostRecent(t *testing.T) {
	s := NewNeighborSet(10)
	touchAll(s, 0, 1, 2, 3, 4, 5, 6)

	assert.Equal(t, 5, s.Len())
	assert.Equal(t,
		[]string{addr(2), addr(3), addr(4), addr(5), addr(6)},
		addrs(s.Peers()))
	assert.False(t, s.Contains(addr(0)))
	assert.True(t, s.Contains(addr(6)))
}

func TestTouchPromotes(t *testing.T) {
	s := NewNeighborSet(10)
	touchAll(s, 0, 1, 2)
	touchAll(s, 0)

	assert.Equal(t, []string{addr(1), addr(2), addr(0)}, addrs(s.Peers()))

	// promoting does not grow the set
	touchAll(s, 2, 2, 2)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{addr(1), addr(0), addr(2)}, addrs(s.Peers()))
}

func TestEvictsHead(t *testing.T) {
	s := NewNeighborSet(4)
	touchAll(s, 0, 1)

	evicted := s.Touch(NewPeer(2, addr(2)))
	require.NotNil(t, evicted)
	assert.Equal(t, addr(0), evicted.NetAddr)

	assert.Nil(t, s.Touch(NewPeer(1, addr(1))))
	assert.Equal(t, []string{addr(2), addr(1)}, addrs(s.Peers()))
}

func TestZeroCapacity(t *testing.T) {
	s := NewNeighborSet(1)
	touchAll(s, 0, 1)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Peers())
}

func TestPeersIsACopy(t *testing.T) {
	s := NewNeighborSet(4)
	touchAll(s, 0, 1)

	ps := s.Peers()
	ps[0].NetAddr = "elsewhere"
	assert.True(t, s.Contains(addr(0)))
}

func TestExcludePeer(t *testing.T) {
	ps := []Peer{NewPeer(0, addr(0)), NewPeer(1, addr(1)), NewPeer(2, addr(2))}

	index, others := ExcludePeer(ps, addr(1))
	assert.Equal(t, 1, index)
	assert.Equal(t, []string{addr(0), addr(2)}, addrs(others))

	index, others = ExcludePeer(ps, "nowhere")
	assert.Equal(t, -1, index)
	assert.Len(t, others, 3)
}
