//go:build legacy

package legacylayout

import (
	"github.com/kmerfield/bfield/internal/combinatorial"
)

// Member is a single, read-only legacy-format bfield member: signed-modulo
// positions fixed at a 64-bit marker width, and bit-reversed markers.
type Member struct {
	store  *RawStore
	params Params
}

// OpenMember opens a legacy bfield file plus its sibling ".params" JSON.
func OpenMember(path string) (*Member, error) {
	params, err := LoadParams(path)
	if err != nil {
		return nil, err
	}
	store, err := OpenRaw(path, 8)
	if err != nil {
		return nil, err
	}
	return &Member{store: store, params: params}, nil
}

func (m *Member) Close() error { return m.store.Close() }

// Get reproduces bfield_member.rs's legacy get path: signed-modulo
// positions, bit-reversed marker windows, same None/Some/Indeterminate
// classification as the default codec.
func (m *Member) Get(key []byte) (found bool, indeterminate bool, value uint32) {
	h0, h1 := legacyHash128(key)
	width := uint64(fixedMarkerWidth)
	kappa := int(m.params.NMarkerBits)

	merged := combinatorial.Zero
	for i := uint64(0); i < width; i++ {
		merged = merged.SetBit(int(i))
	}

	for i := 0; i < int(m.params.NHashes); i++ {
		pos := MarkerPos(h0, h1, i, m.store.Size())
		window, err := m.store.GetRange(pos, pos+width)
		if err != nil {
			return false, false, 0
		}
		aligned := AlignBits(window, int(width))
		merged = merged.And(aligned)
		if merged.PopCount() < kappa {
			return false, false, 0
		}
	}

	switch {
	case merged.PopCount() > kappa:
		return false, true, 0
	case merged.PopCount() == kappa:
		return true, false, combinatorial.Unrank(merged)
	default:
		return false, false, 0
	}
}
