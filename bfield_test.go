package bfield_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/kmerfield/bfield"
	"github.com/kmerfield/bfield/internal/member"
	"github.com/stretchr/testify/require"
)

func TestSizesGeometricShrink(t *testing.T) {
	sizes := bfield.Sizes(1000, 3, 0.6, 0.3)
	require.Equal(t, uint64(1000), sizes[0])
	require.Equal(t, uint64(600), sizes[1])
	require.Equal(t, uint64(360), sizes[2])
}

func TestSizesRespectFloor(t *testing.T) {
	sizes := bfield.Sizes(1000, 4, 0.1, 0.3)
	// each step would shrink below the floor; the floor (300) must win.
	require.Equal(t, uint64(1000), sizes[0])
	for _, s := range sizes[1:] {
		require.Equal(t, uint64(300), s)
	}
}

func TestCreateProducesOneFilePerMember(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "demo.bin")

	bf, err := bfield.Create[member.FileParams](stem, 4096, 3, 64, 4, 0.6, 0.3, 3, nil)
	require.NoError(t, err)
	defer bf.Close()

	for n := 0; n < 3; n++ {
		name := filepath.Join(dir, "demo"+strconv.Itoa(n)+".bfd")
		_, err := os.Stat(name)
		require.NoError(t, err, "member %d file should exist", n)
	}

	infos := bf.Info()
	require.Len(t, infos, 3)
	require.Equal(t, uint64(4096), infos[0].SizeBits)
}

func TestCascadeInsertAndGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "cascade.bin")

	bf, err := bfield.Create[member.FileParams](stem, 8192, 3, 64, 4, 0.6, 0.3, 2, nil)
	require.NoError(t, err)
	defer bf.Close()

	ok, err := bf.Insert([]byte("alpha"), 7, 0)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := bf.Get([]byte("alpha"))
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, member.Val(7), res.Value)

	missing, err := bf.Get([]byte("never-inserted"))
	require.NoError(t, err)
	require.False(t, missing.Found)
}

func TestCascadeInsertRefusesAlreadyResolvedKey(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "resolved.bin")

	bf, err := bfield.Create[member.FileParams](stem, 8192, 3, 64, 4, 0.6, 0.3, 2, nil)
	require.NoError(t, err)
	defer bf.Close()

	ok, err := bf.Insert([]byte("alpha"), 7, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// alpha is resolvable at pass 0 (None/Some), so a later pass must refuse it.
	ok, err = bf.Insert([]byte("alpha"), 9, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestForceInsertReaffirmsExistingValue(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "force.bin")

	bf, err := bfield.Create[member.FileParams](stem, 8192, 2, 16, 4, 0.6, 0.3, 2, nil)
	require.NoError(t, err)
	defer bf.Close()

	ok, err := bf.Insert([]byte("k"), 2, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// reaffirming the value already present at M0 is a no-op acceptance.
	ok, err = bf.ForceInsert([]byte("k"), 2)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestForceInsertDegradesM0ThenRepairsAtSecondary(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "force2.bin")

	bf, err := bfield.Create[member.FileParams](stem, 8192, 2, 16, 4, 0.6, 0.3, 2, nil)
	require.NoError(t, err)
	defer bf.Close()

	ok, err := bf.Insert([]byte("k"), 2, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// forcing a different value at M0 pushes it into indeterminate there,
	// then falls through to M1, which accepts the new value fresh.
	ok, err = bf.ForceInsert([]byte("k"), 3)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := bf.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, member.Val(3), res.Value)

	// repeating is idempotent: M0 stays indeterminate, M1 already holds 3.
	ok, err = bf.ForceInsert([]byte("k"), 3)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPassOutOfRangeRejected(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "bad-pass.bin")

	bf, err := bfield.Create[member.FileParams](stem, 4096, 2, 16, 4, 0.6, 0.3, 2, nil)
	require.NoError(t, err)
	defer bf.Close()

	_, err = bf.Insert([]byte("k"), 1, 5)
	require.ErrorIs(t, err, bfield.ErrPassOutOfRange)
}
