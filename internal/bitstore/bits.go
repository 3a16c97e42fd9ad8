package bitstore

import "github.com/kmerfield/bfield/internal/combinatorial"

// bitAt reports whether bit i (0 = first bit in the vector, most
// significant within any range read starting at it) is set.
func bitAt(data []byte, i uint64) bool {
	return data[i>>3]&(1<<(7-i&7)) != 0
}

// orBitAt sets bit i in data, leaving every other bit untouched. The caller
// holds external write exclusivity (see the package doc): this is the only
// mutating primitive the whole b-field stack needs, and it only ever turns
// bits on, matching the "set_range is an OR" invariant the cascade relies
// on.
func orBitAt(data []byte, i uint64) {
	data[i>>3] |= 1 << (7 - i&7)
}

// getRange reads width bits (width <= 128) starting at bit offset lo and
// returns them right-justified in a U128: the first bit read becomes the
// most significant bit of the result.
func getRange(data []byte, lo, width uint64) combinatorial.U128 {
	out := combinatorial.Zero
	for i := uint64(0); i < width; i++ {
		out = out.SetBitIf(width-1-int(i), bitAt(data, lo+i))
	}
	return out
}

// setRangeOR ORs the low `width` bits of value into data[lo:lo+width),
// preserving whatever was already set (this realizes the "only unions
// markers, never clears" member invariant).
func setRangeOR(data []byte, lo, width uint64, value combinatorial.U128) {
	for i := uint64(0); i < width; i++ {
		if value.Bit(int(width - 1 - i)) {
			orBitAt(data, lo+i)
		}
	}
}

// popcountRange returns the number of set bits in data[lo:hi).
func popcountRange(data []byte, lo, hi uint64) int {
	n := 0
	for i := lo; i < hi; i++ {
		if bitAt(data, i) {
			n++
		}
	}
	return n
}
