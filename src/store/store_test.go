package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cm "github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult(runID string, offset time.Duration) *sim.Result {
	return &sim.Result{
		RunID:          runID,
		Timestamp:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset),
		NumNodes:       3,
		LinkQuality:    "medium",
		Seed:           7,
		CompletionTime: 0.125,
		AllCompleted:   true,
		TotalSent:      12,
		TotalReceived:  20,
		AvgSent:        4,
		AvgReceived:    20.0 / 3,
		OverheadRatio:  20.0 / 12,
		SuccessRate:    100,
		BytesSent:      4800,
		Dropped:        1,
		Nodes: []sim.NodeResult{
			{ID: 0, Addr: "10.1.1.1", Sent: 4, Received: 7, Known: 9, Completed: true, CompletedAt: 1.1},
			{ID: 1, Addr: "10.1.1.2", Sent: 4, Received: 6, Known: 9, Completed: true, CompletedAt: 1.12},
			{ID: 2, Addr: "10.1.1.3", Sent: 4, Received: 7, Known: 9, Completed: true, CompletedAt: 1.125},
		},
	}
}

func testStores(t *testing.T) map[string]Store {
	badgerStore, err := NewBadgerStore(
		filepath.Join(t.TempDir(), "badger"),
		cm.NewTestEntry(t, logrus.WarnLevel),
	)
	require.NoError(t, err)
	t.Cleanup(func() { badgerStore.Close() })

	return map[string]Store{
		"inmem":  NewInmemStore(),
		"badger": badgerStore,
	}
}

func TestStorePutGet(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			want := testResult("run-a", 0)
			require.NoError(t, s.Put(want))

			got, err := s.Get("run-a")
			require.NoError(t, err)

			assert.True(t, want.Timestamp.Equal(got.Timestamp))
			got.Timestamp = want.Timestamp
			assert.Equal(t, want, got)
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("nope")
			require.Error(t, err)
			assert.True(t, cm.IsStore(err, cm.KeyNotFound))
		})
	}
}

func TestStorePutReplaces(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			r := testResult("run-a", 0)
			require.NoError(t, s.Put(r))

			r.TotalSent = 99
			require.NoError(t, s.Put(r))

			got, err := s.Get("run-a")
			require.NoError(t, err)
			assert.Equal(t, uint64(99), got.TotalSent)

			all, err := s.List()
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStoreListOrder(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(testResult("c", 2*time.Second)))
			require.NoError(t, s.Put(testResult("a", 3*time.Second)))
			require.NoError(t, s.Put(testResult("b", time.Second)))

			all, err := s.List()
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "b", all[0].RunID)
			assert.Equal(t, "c", all[1].RunID)
			assert.Equal(t, "a", all[2].RunID)
		})
	}
}

func TestBadgerStoreReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")

	s, err := NewBadgerStore(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, s.StorePath())
	require.NoError(t, s.Put(testResult("persisted", 0)))
	require.NoError(t, s.Close())

	s, err = NewBadgerStore(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get("persisted")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got.NumNodes)
	assert.Len(t, got.Nodes, 3)
}

func TestBadgerStoreRejectsEmptyRunID(t *testing.T) {
	s, err := NewBadgerStore(filepath.Join(t.TempDir(), "badger"), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Put(testResult("", 0)))
}

func TestStoreSimulationResult(t *testing.T) {
	conf := sim.NewTestConfig(t, 4)
	conf.LinkQuality = sim.High
	s, err := sim.New(conf)
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	st := NewInmemStore()
	require.NoError(t, st.Put(result))

	got, err := st.Get(conf.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.TotalSent, got.TotalSent)
	assert.Equal(t, result.CompletionTime, got.CompletionTime)
	assert.Equal(t, result.Nodes, got.Nodes)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*sim.Result{testResult("run-a", 0)}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,numNodes,linkQuality,runId,completionTime,totalSent,totalReceived,overheadRatio,successRate", lines[0])
	assert.Equal(t, "2024-03-01T12:00:00Z,3,medium,run-a,0.125000,12,20,1.6667,100.00", lines[1])
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	require.NoError(t, AppendCSV(path, testResult("run-a", 0)))
	require.NoError(t, AppendCSV(path, testResult("run-b", time.Second), testResult("run-c", 2*time.Second)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, "run-a", records[1][3])
	assert.Equal(t, "run-b", records[2][3])
	assert.Equal(t, "run-c", records[3][3])
}
