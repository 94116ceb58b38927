// Package matrix implements the knowledge matrix at the heart of the key
// agreement protocol.
//
// A node taking part in an N-node run keeps an N×N boolean matrix K. Row i is
// the node's belief about which contributions node i holds: K[i][j] is true
// once the node has evidence that i knows the secret share of j. Row selfID is
// the node's own, authoritative, knowledge.
//
// The matrix only ever grows. Entries go from false to true and never back,
// and Merge combines two matrices with an elementwise OR, which makes it a
// join-semilattice: merging is commutative, associative and idempotent, so
// the order in which gossip messages arrive does not change the final state.
//
// The package also computes the two ratios that drive forwarding decisions:
// ComplementRatio, the share of what we know that a neighbour is missing, and
// ForwardingDegree, the fraction of nodes believed to hold a contribution.
package matrix
