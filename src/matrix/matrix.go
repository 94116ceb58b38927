package matrix

import (
	"strings"

	"github.com/mosaicnetworks/regka/src/common"
)

const component = "Matrix"

// Matrix is the N×N knowledge matrix owned by node selfID. It is not safe for
// concurrent use; the node protocol serialises access.
type Matrix struct {
	n      uint32
	selfID uint32
	bits   []bool
}

// New creates a matrix for n nodes with only the diagonal set.
func New(n, selfID uint32) (*Matrix, error) {
	if n == 0 {
		return nil, common.NewProtocolErr(component, common.InvalidSize, "size must be positive")
	}
	if selfID >= n {
		return nil, common.NewProtocolErr(component, common.IndexOutOfRange, "self %d, size %d", selfID, n)
	}

	m := &Matrix{
		n:      n,
		selfID: selfID,
		bits:   make([]bool, int(n)*int(n)),
	}
	for i := uint32(0); i < n; i++ {
		m.bits[m.index(i, i)] = true
	}

	return m, nil
}

// Size returns N.
func (m *Matrix) Size() uint32 {
	return m.n
}

// SelfID returns the owner of the matrix.
func (m *Matrix) SelfID() uint32 {
	return m.selfID
}

func (m *Matrix) index(i, j uint32) int {
	return int(i)*int(m.n) + int(j)
}

func (m *Matrix) checkIndex(idx ...uint32) error {
	for _, i := range idx {
		if i >= m.n {
			return common.NewProtocolErr(component, common.IndexOutOfRange, "index %d, size %d", i, m.n)
		}
	}
	return nil
}

// Has reports whether node i is believed to hold the contribution of node j.
func (m *Matrix) Has(i, j uint32) (bool, error) {
	if err := m.checkIndex(i, j); err != nil {
		return false, err
	}
	return m.bits[m.index(i, j)], nil
}

func (m *Matrix) has(i, j uint32) bool {
	return m.bits[m.index(i, j)]
}

// AcceptContribution records that the owner now holds the contribution of
// node j. Accepting an already known contribution is a no-op.
func (m *Matrix) AcceptContribution(j uint32) error {
	if err := m.checkIndex(j); err != nil {
		return err
	}
	m.bits[m.index(m.selfID, j)] = true
	return nil
}

// Merge ORs other into m. Both matrices must have the same size; the owner of
// m is unchanged.
func (m *Matrix) Merge(other *Matrix) error {
	if other.n != m.n {
		return common.NewProtocolErr(component, common.DimensionMismatch, "size %d, other %d", m.n, other.n)
	}
	for k, b := range other.bits {
		if b {
			m.bits[k] = true
		}
	}
	return nil
}

// RowComplete reports whether node id is believed to hold every contribution.
// Out of range ids are never complete.
func (m *Matrix) RowComplete(id uint32) bool {
	if id >= m.n {
		return false
	}
	row := m.bits[m.index(id, 0):m.index(id, m.n-1)+1]
	for _, b := range row {
		if !b {
			return false
		}
	}
	return true
}

// MatrixComplete reports whether every entry is set.
func (m *Matrix) MatrixComplete() bool {
	for _, b := range m.bits {
		if !b {
			return false
		}
	}
	return true
}

// ComplementRatio returns |self ∧ ¬nb| / |self ∨ nb| computed over the rows of
// selfID and neighborID. It is 0 when both rows are empty.
func (m *Matrix) ComplementRatio(selfID, neighborID uint32) (float64, error) {
	if err := m.checkIndex(selfID, neighborID); err != nil {
		return 0, err
	}

	var complement, union int
	for j := uint32(0); j < m.n; j++ {
		s, nb := m.has(selfID, j), m.has(neighborID, j)
		if s && !nb {
			complement++
		}
		if s || nb {
			union++
		}
	}
	if union == 0 {
		return 0, nil
	}
	return float64(complement) / float64(union), nil
}

// ForwardingDegree returns the fraction of nodes believed to hold the
// contribution of the given node.
func (m *Matrix) ForwardingDegree(contributor uint32) (float64, error) {
	if err := m.checkIndex(contributor); err != nil {
		return 0, err
	}

	count := 0
	for i := uint32(0); i < m.n; i++ {
		if m.has(i, contributor) {
			count++
		}
	}
	return float64(count) / float64(m.n), nil
}

// Row returns a copy of row i.
func (m *Matrix) Row(i uint32) ([]bool, error) {
	if err := m.checkIndex(i); err != nil {
		return nil, err
	}
	row := make([]bool, m.n)
	copy(row, m.bits[m.index(i, 0):])
	return row, nil
}

// Count returns the number of set entries.
func (m *Matrix) Count() int {
	c := 0
	for _, b := range m.bits {
		if b {
			c++
		}
	}
	return c
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	bits := make([]bool, len(m.bits))
	copy(bits, m.bits)
	return &Matrix{n: m.n, selfID: m.selfID, bits: bits}
}

// Equal compares sizes and entries. The owner is not compared.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || other.n != m.n {
		return false
	}
	for k := range m.bits {
		if m.bits[k] != other.bits[k] {
			return false
		}
	}
	return true
}

// Serialize flattens the matrix in row-major order.
func (m *Matrix) Serialize() []bool {
	bits := make([]bool, len(m.bits))
	copy(bits, m.bits)
	return bits
}

// Deserialize rebuilds an n×n matrix owned by selfID from row-major bits.
// The input is taken as is; callers that receive bits from the network must
// validate them first.
func Deserialize(bits []bool, n, selfID uint32) (*Matrix, error) {
	m, err := New(n, selfID)
	if err != nil {
		return nil, err
	}
	if len(bits) != len(m.bits) {
		return nil, common.NewProtocolErr(component, common.DimensionMismatch, "%d bits for size %d", len(bits), n)
	}
	copy(m.bits, bits)
	return m, nil
}

// String renders one line of '0'/'1' per row.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.Grow(len(m.bits) + int(m.n))
	for i := uint32(0); i < m.n; i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j := uint32(0); j < m.n; j++ {
			if m.has(i, j) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}
