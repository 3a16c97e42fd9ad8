package combinatorial_test

import (
	"testing"

	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/stretchr/testify/require"
)

func TestRankUnrankRoundTrip(t *testing.T) {
	for _, k := range []uint8{1, 2, 3, 4, 8} {
		nu := uint8(16)
		bound := combinatorial.ValueRange(nu, k)
		require.True(t, bound.LessEqualUint64(1<<20), "bound %v fits a uint64 for this test", bound)
		n := bound.Lo
		if n > 2000 {
			n = 2000 // keep the test fast; still exercises the full range shape
		}
		for v := uint64(0); v < n; v++ {
			marker := combinatorial.Rank(uint32(v), k)
			require.Equal(t, int(k), marker.PopCount(), "k=%d v=%d", k, v)
			require.Equal(t, uint32(v), combinatorial.Unrank(marker), "k=%d v=%d", k, v)
		}
	}
}

func TestRankZeroIsLowestSubset(t *testing.T) {
	marker := combinatorial.Rank(0, 4)
	for i := 0; i < 4; i++ {
		require.True(t, marker.Bit(i), "bit %d should be set for the lowest rank-4 subset", i)
	}
	require.Equal(t, 4, marker.PopCount())
}

func TestValueRangeMatchesPascal(t *testing.T) {
	// C(5,2) = 10
	require.Equal(t, uint64(10), combinatorial.ValueRange(5, 2).Lo)
	// C(6,3) = 20
	require.Equal(t, uint64(20), combinatorial.ValueRange(6, 3).Lo)
}
