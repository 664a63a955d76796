// Package da implements the data-availability layer of CANONICAL §4.3:
// share partitioning, systematic Reed-Solomon striping, a Namespaced Merkle
// Tree over coded shares, inclusion/namespace-range proofs, and light-client
// sampling.
package da

// Network-pinned DA parameters (CANONICAL §4.3 "Parameters"). ShareSize must
// be a power of two; K and N define the systematic RS(k,n) code; NSSize is
// the namespace tag width.
//
// CANONICAL §4.3 pins ns_size to {8, 32} but its own worked example
// (§"Examples", #3) uses ns=24. The enumerated set is taken as authoritative
// and NSSize=32 is pinned for this network — wide enough to carry a full
// SHA3-256-derived namespace tag (e.g. per-contract or per-rollup) without
// truncation.
const (
	ShareSize = 1024
	K         = 8
	N         = 12
	NSSize    = 32
)
