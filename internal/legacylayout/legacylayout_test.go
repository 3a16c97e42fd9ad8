//go:build legacy

package legacylayout_test

import (
	"testing"

	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/kmerfield/bfield/internal/legacylayout"
	"github.com/stretchr/testify/require"
)

func TestAlignBitsReversesWithinWidth(t *testing.T) {
	b := combinatorial.Zero.SetBit(0).SetBit(1) // 0b0011
	got := legacylayout.AlignBits(b, 4)
	want := combinatorial.Zero.SetBit(2).SetBit(3) // 0b1100
	require.True(t, got.Equal(want))
}

func TestAlignBitsFiveBit(t *testing.T) {
	b := combinatorial.Zero.SetBit(0).SetBit(1).SetBit(4) // 0b10011
	got := legacylayout.AlignBits(b, 5)
	want := combinatorial.Zero.SetBit(0).SetBit(3).SetBit(4) // 0b11001
	require.True(t, got.Equal(want))
}

func TestMarkerPosIsNonNegative(t *testing.T) {
	pos := legacylayout.MarkerPos(^uint64(0), 12345, 3, 100000)
	require.Less(t, pos, uint64(100000-64))
}
