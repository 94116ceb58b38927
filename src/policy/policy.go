// Package policy decides which contributions a node relays to a neighbour.
//
// The decision is biased by the complement ratio between the two rows: the
// more we know that the neighbour is missing, the more likely each missing
// contribution is to be forwarded. A floor keeps the probability high enough
// for the protocol to make progress even when the rows are similar. Once the
// whole matrix is known the policy switches to mop-up and forwards everything.
package policy

import (
	"math"

	"github.com/mosaicnetworks/regka/src/matrix"
)

// DefaultFloor is the lower bound applied to the complement ratio.
const DefaultFloor = 0.8

// Source yields uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Policy is stateless apart from its random source.
type Policy struct {
	Floor  float64
	Source Source
}

// New returns a Policy with the default floor.
func New(source Source) *Policy {
	return &Policy{
		Floor:  DefaultFloor,
		Source: source,
	}
}

// SelectForwardSet returns, in ascending order, the contributions selfID should
// relay to neighborID.
func (p *Policy) SelectForwardSet(m *matrix.Matrix, selfID, neighborID uint32) ([]uint32, error) {
	n := m.Size()

	cr, err := m.ComplementRatio(selfID, neighborID)
	if err != nil {
		return nil, err
	}

	if m.MatrixComplete() {
		all := make([]uint32, n)
		for j := range all {
			all[j] = uint32(j)
		}
		return all, nil
	}

	cr = math.Max(cr, p.Floor)

	var set []uint32
	for j := uint32(0); j < n; j++ {
		mine, err := m.Has(selfID, j)
		if err != nil {
			return nil, err
		}
		theirs, err := m.Has(neighborID, j)
		if err != nil {
			return nil, err
		}
		if !mine || theirs {
			continue
		}
		if p.Source.Float64() < cr {
			set = append(set, j)
		}
	}
	return set, nil
}

// Mask turns a forward set into an n-bit mask.
func Mask(set []uint32, n uint32) []bool {
	mask := make([]bool, n)
	for _, j := range set {
		if j < n {
			mask[j] = true
		}
	}
	return mask
}

// Set is the inverse of Mask.
func Set(mask []bool) []uint32 {
	var set []uint32
	for j, b := range mask {
		if b {
			set = append(set, uint32(j))
		}
	}
	return set
}
