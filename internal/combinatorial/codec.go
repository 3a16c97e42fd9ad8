package combinatorial

// Rank returns the value-th (in colex order) k-element subset of the
// non-negative integers, rendered as a bit pattern: bit i is set iff i
// belongs to the subset. This is the standard combinatorial number system
// encoding used by samuela/rust-bfield's `rank(value, k)`.
//
// Callers guarantee value < C(nu, k) for whatever marker width nu they
// intend to store the result in; Rank itself is nu-agnostic, exactly like
// the original mmap_bitvec::combinatorial::rank.
func Rank(value uint32, k uint8) U128 {
	Warm()
	remaining := uint64(value)
	marker := Zero
	for i := int(k); i >= 1; i-- {
		c := i - 1
		for choose(c+1, i).LessEqualUint64(remaining) {
			c++
		}
		marker = marker.SetBit(c)
		remaining -= toUint64(choose(c, i))
	}
	return marker
}

// Unrank inverts Rank: given a marker whose Hamming weight is k, it
// recovers the value in [0, C(nu, k)) that produced it. The caller is
// responsible for having already checked popcount(marker) == k; Unrank
// derives k from the marker itself so no width needs to be threaded through.
func Unrank(marker U128) uint32 {
	Warm()
	positions := marker.SetBitsDescending()
	k := len(positions)
	var value uint64
	for j, c := range positions {
		idx := k - j
		value += toUint64(choose(c, idx))
	}
	return uint32(value)
}

// ValueRange returns C(nu, kappa), the exclusive upper bound on values
// encodable with a marker width of nu bits and kappa set bits.
func ValueRange(nu, kappa uint8) U128 {
	return choose(int(nu), int(kappa))
}

// toUint64 assumes its argument was already bound-checked to fit (every
// binomial coefficient this codec compares against a uint32 value never
// exceeds what a uint64 can hold, by construction of the search loop).
func toUint64(v U128) uint64 {
	return v.Lo
}
