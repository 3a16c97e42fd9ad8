// Package member implements one b-field member: a bit-range store plus its
// (n_hashes, marker_width, n_marker_bits, optional T) parameters, exposing
// insert, lookup and the destructive mask-or-insert repair. Grounded almost
// one-to-one on original_source/src/bfield_member.rs, restated in Go idiom
// with the teacher's header/error conventions.
package member

import (
	"errors"
	"fmt"

	"github.com/kmerfield/bfield/internal/bitstore"
	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/kmerfield/bfield/internal/fieldhash"
)

// Val is the value type the codec encodes: a 32-bit unsigned integer,
// 0 <= v < C(marker_width, n_marker_bits).
type Val = uint32

// State classifies a per-member lookup result.
type State uint8

const (
	StateNone State = iota
	StateSome
	StateIndeterminate
)

// Lookup is the result of Member.Lookup: None, Some(value), or Indeterminate.
type Lookup struct {
	State State
	Value Val
}

var (
	ErrValueOutOfRange = errors.New("member: value is not representable with this marker width/weight")
	ErrReadOnly        = bitstore.ErrReadOnly
)

// Member is one b-field member.
type Member[T Params] struct {
	store       *bitstore.Store
	nHashes     uint8
	markerWidth uint8
	nMarkerBits uint8
	other       *T
}

// Create makes a new, writable member backed by a file at path.
func Create[T Params](path string, sizeBits uint64, nHashes, markerWidth, nMarkerBits uint8, other *T) (*Member[T], error) {
	fp := FileParams{NHashes: nHashes, MarkerWidth: markerWidth, NMarkerBits: nMarkerBits}
	if other != nil {
		b, err := (*other).MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("member: marshaling params: %w", err)
		}
		fp.Other = b
	}
	store, err := bitstore.Create(path, sizeBits, fp.encode())
	if err != nil {
		return nil, err
	}
	return &Member[T]{store: store, nHashes: nHashes, markerWidth: markerWidth, nMarkerBits: nMarkerBits, other: other}, nil
}

// Open opens an existing member file. decode reconstructs the optional T
// from its serialized bytes; pass nil if this member is known to carry none.
func Open[T Params](path string, readOnly bool, decode Decoder[T]) (*Member[T], error) {
	store, err := bitstore.Open(path, readOnly)
	if err != nil {
		return nil, err
	}
	return fromStore[T](store, decode)
}

// NewInMemory creates an in-memory member, the variant the spec's own S1-S5
// scenarios and the original Rust test suite (`BFieldMember::in_memory`) use.
func NewInMemory[T Params](sizeBits uint64, nHashes, markerWidth, nMarkerBits uint8) *Member[T] {
	fp := FileParams{NHashes: nHashes, MarkerWidth: markerWidth, NMarkerBits: nMarkerBits}
	store := bitstore.NewInMemory(sizeBits, fp.encode())
	return &Member[T]{store: store, nHashes: nHashes, markerWidth: markerWidth, nMarkerBits: nMarkerBits}
}

func fromStore[T Params](store *bitstore.Store, decode Decoder[T]) (*Member[T], error) {
	fp, err := decodeFileParams(store.Header())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bitstore.ErrHeaderMismatch, err)
	}
	m := &Member[T]{
		store:       store,
		nHashes:     fp.NHashes,
		markerWidth: fp.MarkerWidth,
		nMarkerBits: fp.NMarkerBits,
	}
	if len(fp.Other) > 0 && decode != nil {
		other, err := decode(fp.Other)
		if err != nil {
			return nil, fmt.Errorf("member: decoding params: %w: %w", bitstore.ErrHeaderMismatch, err)
		}
		m.other = &other
	}
	return m, nil
}

// Params returns this member's user parameters, if any.
func (m *Member[T]) Params() (T, bool) {
	if m.other == nil {
		var zero T
		return zero, false
	}
	return *m.other, true
}

// MockParams overrides the in-memory params without touching the file —
// useful for simulating params on a legacy file that never had them.
func (m *Member[T]) MockParams(p T) {
	m.other = &p
}

// Info returns (size in bits, n_hashes, marker_width, n_marker_bits).
type Info struct {
	SizeBits    uint64
	NHashes     uint8
	MarkerWidth uint8
	NMarkerBits uint8
}

func (m *Member[T]) Info() Info {
	return Info{SizeBits: m.store.Size(), NHashes: m.nHashes, MarkerWidth: m.markerWidth, NMarkerBits: m.nMarkerBits}
}

func (m *Member[T]) Close() error { return m.store.Close() }
func (m *Member[T]) Sync() error  { return m.store.Sync() }

// RawPopCount returns the number of set bits across the whole bit vector,
// the literal quantity spec.md's saturation scenarios reason about directly.
func (m *Member[T]) RawPopCount() (int, error) {
	return m.store.Rank(0, m.store.Size())
}

// Insert writes value's marker into all n_hashes positions for key.
func (m *Member[T]) Insert(key []byte, value Val) error {
	bound := combinatorial.ValueRange(m.markerWidth, m.nMarkerBits)
	if bound.LessEqualUint64(uint64(value)) {
		return ErrValueOutOfRange
	}
	marker := combinatorial.Rank(value, m.nMarkerBits)
	return m.insertRaw(key, marker)
}

func (m *Member[T]) insertRaw(key []byte, marker combinatorial.U128) error {
	h0, h1 := fieldhash.Hash128(key)
	width := uint64(m.markerWidth)
	for i := uint64(0); i < uint64(m.nHashes); i++ {
		pos := markerPos(h0, h1, i, m.store.Size(), width)
		if err := m.store.SetRange(pos, pos+width, marker); err != nil {
			return err
		}
	}
	return nil
}

// Lookup classifies key by looking at the AND of its n_hashes marker
// windows: fewer than kappa bits set means the key was never inserted here
// (None); exactly kappa means a decodable value (Some); more means the
// windows collided with other keys' markers (Indeterminate).
func (m *Member[T]) Lookup(key []byte) (Lookup, error) {
	merged, err := m.getRaw(key)
	if err != nil {
		return Lookup{}, err
	}
	kappa := int(m.nMarkerBits)
	switch {
	case merged.PopCount() > kappa:
		return Lookup{State: StateIndeterminate}, nil
	case merged.PopCount() == kappa:
		return Lookup{State: StateSome, Value: combinatorial.Unrank(merged)}, nil
	default:
		return Lookup{State: StateNone}, nil
	}
}

// getRaw returns the AND of the n_hashes marker windows for key, or zero
// the instant the running popcount drops below kappa (the spec's permitted
// short-circuit optimization).
func (m *Member[T]) getRaw(key []byte) (combinatorial.U128, error) {
	h0, h1 := fieldhash.Hash128(key)
	width := uint64(m.markerWidth)
	kappa := int(m.nMarkerBits)

	positions := make([]uint64, m.nHashes)
	for i := uint64(0); i < uint64(m.nHashes); i++ {
		positions[i] = markerPos(h0, h1, i, m.store.Size(), width)
		m.store.Prefetch(positions[i]) // optional hint; never changes the result
	}

	merged := allOnes(width)
	for _, pos := range positions {
		window, err := m.store.GetRange(pos, pos+width)
		if err != nil {
			return combinatorial.Zero, err
		}
		merged = merged.And(window)
		if merged.PopCount() < kappa {
			return combinatorial.Zero, nil
		}
	}
	return merged, nil
}

// MaskOrInsert implements the destructive repair: insert value if the key
// is unresolved here, confirm it if already correctly present, or
// deliberately push it into Indeterminate if it is present with a
// different value. Returns true when it inserted value (the key was
// unresolved here) or found it already correctly present, and false when
// the key is, or has just been made, indeterminate. A fresh insert can
// still leave the key indeterminate if its windows overlap other markers.
func (m *Member[T]) MaskOrInsert(key []byte, value Val) (bool, error) {
	correct := combinatorial.Rank(value, m.nMarkerBits)
	existing, err := m.getRaw(key)
	if err != nil {
		return false, err
	}
	kappa := m.nMarkerBits

	switch {
	case existing.PopCount() > int(kappa):
		return false, nil // already indeterminate
	case existing.PopCount() == int(kappa):
		if existing.Equal(correct) {
			return true, nil
		}
		newMarker := firstUnsetBitAbove(existing, kappa)
		if err := m.insertRaw(key, newMarker); err != nil {
			return false, err
		}
		return false, nil
	default:
		if err := m.insertRaw(key, correct); err != nil {
			return false, err
		}
		return true, nil
	}
}

// firstUnsetBitAbove returns existing with the lowest-indexed bit that
// isn't already set turned on, guaranteeing popcount > kappa. Matches
// bfield_member.rs's mask_or_insert bit search (start at bit 0, advance
// upward until a new bit is found).
func firstUnsetBitAbove(existing combinatorial.U128, kappa uint8) combinatorial.U128 {
	pos := 0
	marker := existing
	for marker.PopCount() == int(kappa) {
		marker = existing.SetBit(pos)
		pos++
	}
	return marker
}

func allOnes(width uint64) combinatorial.U128 {
	out := combinatorial.Zero
	for i := uint64(0); i < width; i++ {
		out = out.SetBit(int(i))
	}
	return out
}

// markerPos computes pos_i = (h0 + i*h1) mod (size_bits - marker_width),
// with wrapping 64-bit arithmetic before the final modulus, per spec.md §4.3.
func markerPos(h0, h1, i, sizeBits, markerWidth uint64) uint64 {
	return (h0 + i*h1) % (sizeBits - markerWidth)
}
