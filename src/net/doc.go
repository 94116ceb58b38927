// Package net carries gossip messages between key agreement nodes.
//
// Message is the single wire format. It holds the sender's index, the forward
// mask of contributions the sender vouches for, and a snapshot of the
// sender's knowledge matrix. Encode appends padding standing in for the
// cryptographic material a deployment would attach to each signalled
// contribution, so payload sizes reflect the real cost of a message.
//
// Transport is the datagram interface nodes send and receive through. A send
// to BroadcastAddr reaches every other node on the medium.
//
// Inmem
//
// InmemNetwork is a fully connected channel whose deliveries are scheduled on
// a sched.Scheduler. Each delivery is delayed by the channel latency plus a
// uniform jitter and dropped with the channel loss rate. On a sched.Simulator
// a seeded network replays identically.
package net
