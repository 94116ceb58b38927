// Package store keeps the results of runs.
//
// BadgerStore persists results in a badger database so that sweeps can be
// resumed and inspected later, InmemStore keeps them in memory for tests and
// one-off runs. Both encode results as canonical JSON. AppendCSV writes the
// flat per-run summary used by plotting scripts.
package store
