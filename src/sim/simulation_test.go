package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkQuality(t *testing.T) {
	for _, q := range LinkQualities {
		parsed, err := ParseLinkQuality(string(q))
		require.NoError(t, err)
		assert.Equal(t, q, parsed)
	}

	_, err := ParseLinkQuality("excellent")
	assert.Error(t, err)

	// worse links lose more
	for i := 1; i < len(LinkQualities); i++ {
		assert.Greater(t, LinkQualities[i].Channel().LossRate, LinkQualities[i-1].Channel().LossRate)
	}
}

func TestNewRejectsEmptyRun(t *testing.T) {
	_, err := New(NewTestConfig(t, 0))
	assert.Error(t, err)
}

func TestRunCompletes(t *testing.T) {
	conf := NewTestConfig(t, 6)
	conf.LinkQuality = High

	s, err := New(conf)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.RunID)
	require.Len(t, s.Nodes(), 6)
	assert.Equal(t, "10.1.1.1", s.Nodes()[0].Addr())

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.AllCompleted)
	assert.True(t, s.AllNodesCompleted())
	assert.Equal(t, 100.0, result.SuccessRate)
	assert.Greater(t, result.CompletionTime, 0.0)
	assert.Less(t, result.CompletionTime, 5.0)

	assert.Equal(t, uint32(6), result.NumNodes)
	assert.Equal(t, "high", result.LinkQuality)
	require.Len(t, result.Nodes, 6)

	var sent, received uint64
	for _, nr := range result.Nodes {
		sent += nr.Sent
		received += nr.Received
		assert.True(t, nr.Completed)
		assert.GreaterOrEqual(t, nr.CompletedAt, 0.0)
	}
	assert.Equal(t, sent, result.TotalSent)
	assert.Equal(t, received, result.TotalReceived)
	assert.InDelta(t, float64(sent)/6, result.AvgSent, 1e-9)
	assert.InDelta(t, float64(received)/float64(sent), result.OverheadRatio, 1e-9)
	assert.NotZero(t, result.BytesSent)
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() *Result {
		conf := NewTestConfig(t, 8)
		conf.LinkQuality = Low
		conf.Seed = 42
		conf.RunID = "det"
		s, err := New(conf)
		require.NoError(t, err)
		r, err := s.Run(context.Background())
		require.NoError(t, err)
		return r
	}

	a, b := run(), run()
	assert.Equal(t, a.CompletionTime, b.CompletionTime)
	assert.Equal(t, a.TotalSent, b.TotalSent)
	assert.Equal(t, a.TotalReceived, b.TotalReceived)
	assert.Equal(t, a.Dropped, b.Dropped)
}

func TestRunTimesOut(t *testing.T) {
	conf := NewTestConfig(t, 4)
	conf.SimTime = 500 * time.Millisecond

	s, err := New(conf)
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	// nodes start at 1s, after the end of the run
	assert.False(t, result.AllCompleted)
	assert.Equal(t, -1.0, result.CompletionTime)
	assert.Equal(t, 0.0, result.SuccessRate)
	assert.Equal(t, uint64(0), result.TotalSent)
	assert.Equal(t, 0.0, result.OverheadRatio)
}

func TestRunSingleNode(t *testing.T) {
	s, err := New(NewTestConfig(t, 1))
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.AllCompleted)
	assert.Equal(t, 100.0, result.SuccessRate)
}

func TestRunRealtime(t *testing.T) {
	conf := NewTestConfig(t, 4)
	conf.Realtime = true
	conf.LinkQuality = High
	conf.SimTime = 10 * time.Second
	conf.StartTime = 10 * time.Millisecond
	conf.Node.AnnounceDelay = time.Millisecond
	conf.Node.SendDelay = time.Millisecond
	conf.Node.PeriodicStart = 50 * time.Millisecond
	conf.Node.PeriodicInterval = 20 * time.Millisecond

	s, err := New(conf)
	require.NoError(t, err)

	start := time.Now()
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.AllCompleted)
	assert.True(t, result.Realtime)
	assert.Less(t, time.Since(start), conf.SimTime)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conf := NewTestConfig(t, 4)
	conf.Realtime = true
	s, err := New(conf)
	require.NoError(t, err)

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep(t *testing.T) {
	base := NewTestConfig(t, 0)
	base.LinkQuality = High
	base.RunID = "sweep"

	var mu sync.Mutex
	seen := map[string]*Result{}

	err := Sweep(context.Background(), SweepConfig{
		Base:        *base,
		NodeCounts:  []uint32{3, 5},
		Runs:        2,
		Parallelism: 3,
	}, func(r *Result) error {
		mu.Lock()
		defer mu.Unlock()
		seen[r.RunID] = r
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 4)
	for _, id := range []string{"sweep-3-0", "sweep-3-1", "sweep-5-0", "sweep-5-1"} {
		require.Contains(t, seen, id)
		assert.True(t, seen[id].AllCompleted, id)
	}
	assert.Equal(t, uint32(5), seen["sweep-5-1"].NumNodes)
	assert.Equal(t, int64(2), seen["sweep-5-1"].Seed)
}

func TestSweepStopsOnError(t *testing.T) {
	base := NewTestConfig(t, 0)
	calls := 0

	err := Sweep(context.Background(), SweepConfig{
		Base:       *base,
		NodeCounts: []uint32{3},
		Runs:       3,
	}, func(r *Result) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestRunOverUDP(t *testing.T) {
	conf := NewTestConfig(t, 4)
	conf.Transport = UDPTransport
	conf.SimTime = 10 * time.Second
	conf.StartTime = 10 * time.Millisecond
	conf.Node.AnnounceDelay = time.Millisecond
	conf.Node.SendDelay = time.Millisecond
	conf.Node.PeriodicStart = 50 * time.Millisecond
	conf.Node.PeriodicInterval = 20 * time.Millisecond

	s, err := New(conf)
	require.NoError(t, err)
	assert.Nil(t, s.Network())
	assert.True(t, conf.Realtime)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.AllCompleted)
	assert.Equal(t, UDPTransport, result.Transport)
	for _, nr := range result.Nodes {
		assert.Contains(t, nr.Addr, "127.0.0.1:")
	}
}

func TestNewRejectsUnknownTransport(t *testing.T) {
	conf := NewTestConfig(t, 2)
	conf.Transport = "carrier-pigeon"
	_, err := New(conf)
	assert.Error(t, err)
}

func TestNewRejectsOversizedUDPGroup(t *testing.T) {
	conf := NewTestConfig(t, 1000)
	conf.Transport = UDPTransport
	_, err := New(conf)
	assert.Error(t, err)
}
