// Package fieldhash derives the two independent 64-bit hash lanes the
// member package uses to place markers, replacing the spec's unspecified
// "128-bit non-cryptographic hash" collaborator with a concrete choice
// grounded on compactindexsized's domain-separated xxhash use.
package fieldhash

import (
	"github.com/cespare/xxhash/v2"
)

// lane0 and lane1 are arbitrary, fixed domain-separation prefixes fed ahead
// of the key, the same trick EntryHash64 uses to mine independent hash
// values out of one hash family instead of pulling in a second one.
var (
	lane0Prefix = [8]byte{'b', 'f', 'l', 'd', 'l', 'n', '0', 0}
	lane1Prefix = [8]byte{'b', 'f', 'l', 'd', 'l', 'n', '1', 0}
)

// Hash128 returns the pair (h0, h1) used to derive marker positions:
//
//	pos_i = (h0 + i*h1) mod (size_bits - nu)
func Hash128(key []byte) (h0, h1 uint64) {
	return laneSum(lane0Prefix, key), laneSum(lane1Prefix, key)
}

func laneSum(prefix [8]byte, key []byte) uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.Write(prefix[:])
	_, _ = d.Write(key)
	return d.Sum64()
}
