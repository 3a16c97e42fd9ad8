//go:build legacy

package legacylayout

import "github.com/twmb/murmur3"

// legacyHash128 reproduces murmurhash3_x64_128(key, 0), the hash the nim and
// Rust legacy producers actually used. This deliberately does NOT reuse
// internal/fieldhash's xxhash-based lanes: those belong to the modern codec
// and would silently miss every marker position a real legacy file was built
// with, defeating the whole point of this build tag.
func legacyHash128(key []byte) (uint64, uint64) {
	return murmur3.SeedSum128(0, 0, key)
}
