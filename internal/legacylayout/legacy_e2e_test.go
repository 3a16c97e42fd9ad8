//go:build legacy

package legacylayout

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/stretchr/testify/require"
)

// writeLegacyParams writes a sibling ".params" JSON array file with the
// three fields LoadParams actually reads (k, nu, kappa at indices 3, 4, 5), padded
// out to the original's 11-field shape.
func writeLegacyParams(t *testing.T, bfieldPath string, k, nu, kappa uint8) {
	t.Helper()
	content := fmt.Sprintf(`[1000,"root",1,%d,%d,%d,0.6,1,100,0.3,false]`, k, nu, kappa)
	require.NoError(t, os.WriteFile(ParamsPath(bfieldPath), []byte(content), 0o644))
}

// writeLegacyFile writes a raw legacy bfield file: 8 bytes of skipped
// header padding (OpenRaw's skipBytes) followed by a bit region of sizeBits
// bits, initialized throughout to fill.
func writeLegacyFile(t *testing.T, path string, sizeBits uint64, fill byte) []byte {
	t.Helper()
	buf := make([]byte, 8+int((sizeBits+7)/8))
	for i := 8; i < len(buf); i++ {
		buf[i] = fill
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return buf
}

// insertLegacy ORs value's marker into buf (already carrying its 8-byte skip
// prefix) at every hash position for key, reproducing the legacy insert path
// so a test fixture is built with exactly the same hash/position/alignment
// Member.Get reads back with.
func insertLegacy(buf []byte, sizeBits uint64, k, kappa uint8, key []byte, value uint32) {
	h0, h1 := legacyHash128(key)
	marker := combinatorial.Rank(value, kappa)
	aligned := AlignBits(marker, fixedMarkerWidth)
	for i := 0; i < int(k); i++ {
		pos := MarkerPos(h0, h1, i, sizeBits)
		orRangeInto(buf[8:], pos, fixedMarkerWidth, aligned)
	}
}

func orRangeInto(data []byte, lo, width uint64, value combinatorial.U128) {
	for i := uint64(0); i < width; i++ {
		if value.Bit(int(width - 1 - i)) {
			data[(lo+i)>>3] |= 1 << (7 - (lo+i)&7)
		}
	}
}

func TestMemberGetEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "single.mmap")
	sizeBits := uint64(1024)
	k, nu, kappa := uint8(3), uint8(64), uint8(4)

	buf := writeLegacyFile(t, path, sizeBits, 0x00)
	insertLegacy(buf, sizeBits, k, kappa, []byte("hello"), 5)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	writeLegacyParams(t, path, k, nu, kappa)

	m, err := OpenMember(path)
	require.NoError(t, err)
	defer m.Close()

	found, indeterminate, value := m.Get([]byte("hello"))
	require.True(t, found)
	require.False(t, indeterminate)
	require.Equal(t, uint32(5), value)

	found, indeterminate, _ = m.Get([]byte("never-inserted"))
	require.False(t, found)
	require.False(t, indeterminate)
}

// TestCascadeFallsThroughFromSaturatedPrimary builds a two-member legacy
// cascade whose primary is entirely set to ones -- deterministically
// Indeterminate for any key, regardless of actual hash output -- and checks
// that OpenCascade/Get fall through to the secondary exactly as
// original_source/src/bfield.rs's legacy from_file/get do.
func TestCascadeFallsThroughFromSaturatedPrimary(t *testing.T) {
	dir := t.TempDir()
	primaryPath := filepath.Join(dir, "cascade.mmap")
	secondaryPathStr := secondaryPath(primaryPath, 1)

	k, nu, kappa := uint8(3), uint8(64), uint8(4)
	primarySize := uint64(256)
	secondarySize := uint64(1024)

	writeLegacyFile(t, primaryPath, primarySize, 0xFF)
	writeLegacyParams(t, primaryPath, k, nu, kappa)

	secBuf := writeLegacyFile(t, secondaryPathStr, secondarySize, 0x00)
	insertLegacy(secBuf, secondarySize, k, kappa, []byte("alpha"), 7)
	require.NoError(t, os.WriteFile(secondaryPathStr, secBuf, 0o644))
	writeLegacyParams(t, secondaryPathStr, k, nu, kappa)

	c, err := OpenCascade(primaryPath)
	require.NoError(t, err)
	defer c.Close()
	require.Len(t, c.members, 2)

	found, value := c.Get([]byte("alpha"))
	require.True(t, found)
	require.Equal(t, uint32(7), value)

	found, _ = c.Get([]byte("never-inserted"))
	require.False(t, found)
}
