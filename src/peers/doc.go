// Package peers defines a gossip peer and the bounded, recency-ordered set of
// neighbours a node relays to.
//
// A peer is identified by its network address; the numeric ID is the index
// of its contribution in the knowledge matrix and is learned from the sender
// field of the first message received from that address.
//
// A node does not know the rest of the network up front. It discovers
// neighbours by hearing from them, and keeps only the ⌊N/2⌋ most recently
// heard. Hearing again from a known neighbour moves it to the most recent
// position; hearing from a new one when the set is full evicts the least
// recently heard.
package peers
