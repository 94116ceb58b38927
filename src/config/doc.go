// Package config defines the configuration of a regka process.
//
// The command line tool loads flags and an optional regka.toml from the data
// directory into the Config defined here. Besides the run parameters, the data
// directory holds the outputs of runs:
//
//	badger_db/   // results of every stored run (--store)
//	results.csv  // one summary line per run
package config
