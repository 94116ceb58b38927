package matrix

import (
	"math/rand"
	"testing"

	"github.com/mosaicnetworks/regka/src/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrix(t *testing.T, r *rand.Rand, n, self uint32) *Matrix {
	m, err := New(n, self)
	require.NoError(t, err)
	for k := range m.bits {
		if r.Intn(3) == 0 {
			m.bits[k] = true
		}
	}
	return m
}

func TestNew(t *testing.T) {
	m, err := New(4, 2)
	require.NoError(t, err)

	for i := uint32(0); i < 4; i++ {
		for j := uint32(0); j < 4; j++ {
			has, err := m.Has(i, j)
			require.NoError(t, err)
			assert.Equal(t, i == j, has, "K[%d][%d]", i, j)
		}
	}
	assert.Equal(t, 4, m.Count())
	assert.Equal(t, "1000\n0100\n0010\n0001", m.String())
}

func TestNewErrors(t *testing.T) {
	_, err := New(0, 0)
	assert.True(t, common.Is(err, common.InvalidSize))

	_, err = New(3, 3)
	assert.True(t, common.Is(err, common.IndexOutOfRange))
}

func TestSingleNodeIsComplete(t *testing.T) {
	m, err := New(1, 0)
	require.NoError(t, err)
	assert.True(t, m.RowComplete(0))
	assert.True(t, m.MatrixComplete())
}

func TestHasOutOfRange(t *testing.T) {
	m, _ := New(3, 0)
	_, err := m.Has(3, 0)
	assert.True(t, common.Is(err, common.IndexOutOfRange))
	_, err = m.Has(0, 5)
	assert.True(t, common.Is(err, common.IndexOutOfRange))
}

func TestAcceptContribution(t *testing.T) {
	m, _ := New(3, 1)

	require.NoError(t, m.AcceptContribution(2))
	has, _ := m.Has(1, 2)
	assert.True(t, has)

	// idempotent
	require.NoError(t, m.AcceptContribution(2))
	assert.Equal(t, 4, m.Count())

	assert.True(t, common.Is(m.AcceptContribution(3), common.IndexOutOfRange))
}

func TestMergeDimensionMismatch(t *testing.T) {
	a, _ := New(3, 0)
	b, _ := New(4, 0)
	assert.True(t, common.Is(a.Merge(b), common.DimensionMismatch))
}

func TestMergeLaws(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		a := randomMatrix(t, r, 6, 0)
		b := randomMatrix(t, r, 6, 1)
		c := randomMatrix(t, r, 6, 2)

		// commutative
		ab := a.Clone()
		require.NoError(t, ab.Merge(b))
		ba := b.Clone()
		require.NoError(t, ba.Merge(a))
		assert.True(t, ab.Equal(ba))

		// associative
		abc := ab.Clone()
		require.NoError(t, abc.Merge(c))
		bc := b.Clone()
		require.NoError(t, bc.Merge(c))
		aBC := a.Clone()
		require.NoError(t, aBC.Merge(bc))
		assert.True(t, abc.Equal(aBC))

		// idempotent
		aa := a.Clone()
		require.NoError(t, aa.Merge(a))
		assert.True(t, aa.Equal(a))
	}
}

func TestMergeIsMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(11))

	m, _ := New(5, 0)
	for round := 0; round < 100; round++ {
		before := m.Clone()
		require.NoError(t, m.Merge(randomMatrix(t, r, 5, uint32(r.Intn(5)))))
		for k := range before.bits {
			if before.bits[k] {
				assert.True(t, m.bits[k], "entry %d regressed", k)
			}
		}
		assert.Equal(t, uint32(0), m.SelfID())
	}
}

func TestRowAndMatrixComplete(t *testing.T) {
	m, _ := New(3, 0)
	assert.False(t, m.RowComplete(0))

	require.NoError(t, m.AcceptContribution(1))
	require.NoError(t, m.AcceptContribution(2))
	assert.True(t, m.RowComplete(0))
	assert.False(t, m.MatrixComplete())
	assert.False(t, m.RowComplete(3))

	for k := range m.bits {
		m.bits[k] = true
	}
	assert.True(t, m.MatrixComplete())
}

func TestComplementRatio(t *testing.T) {
	m, _ := New(4, 0)
	require.NoError(t, m.AcceptContribution(1))
	require.NoError(t, m.AcceptContribution(2))

	// self row 1110, neighbour row 0100
	cr, err := m.ComplementRatio(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, cr, 1e-9)

	// self row against itself
	cr, err = m.ComplementRatio(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cr)

	_, err = m.ComplementRatio(0, 4)
	assert.True(t, common.Is(err, common.IndexOutOfRange))
}

func TestComplementRatioEmptyUnion(t *testing.T) {
	m, _ := New(2, 0)
	m.bits[m.index(0, 0)] = false
	m.bits[m.index(1, 1)] = false

	cr, err := m.ComplementRatio(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cr)
}

func TestForwardingDegree(t *testing.T) {
	m, _ := New(4, 0)
	other, _ := New(4, 1)
	require.NoError(t, other.AcceptContribution(0))
	require.NoError(t, m.Merge(other))

	fd, err := m.ForwardingDegree(0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, fd)

	fd, err = m.ForwardingDegree(3)
	require.NoError(t, err)
	assert.Equal(t, 0.25, fd)
}

func TestSerializeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	for _, n := range []uint32{1, 2, 3, 7, 10} {
		m := randomMatrix(t, r, n, n-1)
		bits := m.Serialize()
		require.Len(t, bits, int(n*n))

		back, err := Deserialize(bits, n, n-1)
		require.NoError(t, err)
		assert.True(t, m.Equal(back))
		assert.Equal(t, m.String(), back.String())
	}
}

func TestSerializeRowMajor(t *testing.T) {
	m, _ := New(3, 0)
	require.NoError(t, m.AcceptContribution(2))

	assert.Equal(t,
		[]bool{true, false, true, false, true, false, false, false, true},
		m.Serialize())
}

func TestDeserializeWrongLength(t *testing.T) {
	_, err := Deserialize(make([]bool, 8), 3, 0)
	assert.True(t, common.Is(err, common.DimensionMismatch))
}

func TestRowCopy(t *testing.T) {
	m, _ := New(3, 0)
	row, err := m.Row(0)
	require.NoError(t, err)
	row[1] = true

	has, _ := m.Has(0, 1)
	assert.False(t, has, "Row must return a copy")
}
