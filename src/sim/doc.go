// Package sim drives a key agreement run.
//
// A Simulation attaches N nodes to an in-memory channel whose latency, jitter
// and loss come from a LinkQuality preset, starts them one after another, and
// polls until every node holds every contribution or the time bound is
// reached. Runs execute in virtual time on a sched.Simulator by default, or on
// the wall clock with a sched.EventLoop. Sweep repeats runs over node counts
// and seeds.
package sim
