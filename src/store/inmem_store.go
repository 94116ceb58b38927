package store

import (
	"sort"
	"sync"

	cm "github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/sim"
)

// InmemStore implements the Store interface with a map. Results are copied
// through the codec so callers cannot alias stored values.
type InmemStore struct {
	sync.RWMutex
	results map[string][]byte
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		results: make(map[string][]byte),
	}
}

// Put implements the Store interface.
func (s *InmemStore) Put(result *sim.Result) error {
	val, err := marshalResult(result)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()
	s.results[result.RunID] = val
	return nil
}

// Get implements the Store interface.
func (s *InmemStore) Get(runID string) (*sim.Result, error) {
	s.RLock()
	val, ok := s.results[runID]
	s.RUnlock()

	if !ok {
		return nil, cm.NewStoreErr("Result", cm.KeyNotFound, runID)
	}
	return unmarshalResult(val)
}

// List implements the Store interface.
func (s *InmemStore) List() ([]*sim.Result, error) {
	s.RLock()
	defer s.RUnlock()

	res := make([]*sim.Result, 0, len(s.results))
	for _, val := range s.results {
		r, err := unmarshalResult(val)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	sortResults(res)
	return res, nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}

// StorePath implements the Store interface.
func (s *InmemStore) StorePath() string {
	return ""
}

func sortResults(res []*sim.Result) {
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Timestamp.Equal(res[j].Timestamp) {
			return res[i].RunID < res[j].RunID
		}
		return res[i].Timestamp.Before(res[j].Timestamp)
	})
}
