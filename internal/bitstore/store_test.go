package bitstore_test

import (
	"testing"

	"github.com/kmerfield/bfield/internal/bitstore"
	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGetSetRangeIsOR(t *testing.T) {
	s := bitstore.NewInMemory(256, []byte("hdr"))
	require.Equal(t, []byte("hdr"), s.Header())
	require.Equal(t, uint64(256), s.Size())

	v := combinatorial.Rank(3, 4)
	require.NoError(t, s.SetRange(0, 16, v))

	got, err := s.GetRange(0, 16)
	require.NoError(t, err)
	require.True(t, got.Equal(v))

	// setting again must not clear anything: popcount never decreases.
	before, err := s.Rank(0, 16)
	require.NoError(t, err)
	require.NoError(t, s.SetRange(0, 16, combinatorial.Rank(5, 4)))
	after, err := s.Rank(0, 16)
	require.NoError(t, err)
	require.GreaterOrEqual(t, after, before)
}

func TestRangeTooWideRejected(t *testing.T) {
	s := bitstore.NewInMemory(256, nil)
	_, err := s.GetRange(0, 129)
	require.ErrorIs(t, err, bitstore.ErrRangeTooWide)
}
