package store

import "github.com/mosaicnetworks/regka/src/sim"

// Store is an interface for result backends.
type Store interface {
	// Put inserts or replaces the result of a run, keyed by run ID.
	Put(result *sim.Result) error
	// Get returns the result of a run.
	Get(runID string) (*sim.Result, error)
	// List returns every result, oldest first.
	List() ([]*sim.Result, error)
	// Close closes the underlying database.
	Close() error
	// StorePath returns the filepath of the underlying database.
	StorePath() string
}
