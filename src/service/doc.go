// Package service implements the HTTP API.
//
//	/results         every stored result, oldest first
//	/results/{id}    one result
//	/results.csv     the stored results as CSV
//	/stats           per-node stats of the current run
//	/metrics         prometheus metrics
package service
