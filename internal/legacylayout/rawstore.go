//go:build legacy

package legacylayout

import (
	"fmt"

	"github.com/kmerfield/bfield/internal/combinatorial"
	xmmap "golang.org/x/exp/mmap"
)

// RawStore is a read-only view of a legacy bfield file: no magic, no
// in-file header, just `skipBytes` of leading padding (the nim producer's
// `open_no_header(filename, 8)` skip) followed by the raw bit region.
// Deliberately separate from bitstore.Store: the legacy format predates the
// magic-prefixed header contract and must not be bent to fit it.
type RawStore struct {
	r         *xmmap.ReaderAt
	skipBytes int64
	sizeBits  uint64
}

// OpenRaw opens a legacy bfield file for reading.
func OpenRaw(path string, skipBytes int) (*RawStore, error) {
	r, err := xmmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("legacylayout: opening %s: %w", path, err)
	}
	sizeBits := uint64(r.Len()-skipBytes) * 8
	return &RawStore{r: r, skipBytes: int64(skipBytes), sizeBits: sizeBits}, nil
}

func (s *RawStore) Size() uint64 { return s.sizeBits }

func (s *RawStore) Close() error { return s.r.Close() }

// GetRange returns width = hi-lo bits (<=128) starting at bit lo.
func (s *RawStore) GetRange(lo, hi uint64) (combinatorial.U128, error) {
	width := hi - lo
	if width > 128 {
		return combinatorial.Zero, fmt.Errorf("legacylayout: range of %d bits exceeds 128", width)
	}
	byteLo := lo / 8
	byteHi := (hi + 7) / 8
	buf := make([]byte, byteHi-byteLo)
	if _, err := s.r.ReadAt(buf, s.skipBytes+int64(byteLo)); err != nil {
		return combinatorial.Zero, fmt.Errorf("legacylayout: range read: %w", err)
	}
	relLo := lo - byteLo*8
	out := combinatorial.Zero
	for i := uint64(0); i < width; i++ {
		bit := bitAt(buf, relLo+i)
		out = out.SetBitIf(int(width-1-i), bit)
	}
	return out, nil
}

func bitAt(data []byte, i uint64) bool {
	return data[i>>3]&(1<<(7-i&7)) != 0
}
