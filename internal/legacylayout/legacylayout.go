//go:build legacy

// Package legacylayout reproduces the historical on-disk format described in
// spec.md §9: bit-reversed marker alignment, a fixed 64-bit marker width
// baked into the position formula regardless of the file's actual marker
// width, signed-modulo position arithmetic, and a sibling ".params" JSON
// array instead of an in-file header. Grounded nearly verbatim on
// original_source/src/bfield_member.rs's `#[cfg(feature = "legacy")]` arms.
// Only ever compiled in with -tags legacy; the default build never sees it.
package legacylayout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmerfield/bfield/internal/combinatorial"
)

// fixedMarkerWidth is the marker width baked into the legacy position
// formula — the nim producer this mirrors always used 64, independent of
// whatever marker_width a given file's params record.
const fixedMarkerWidth = 64

// AlignBits bit-reverses the low `width` bits of b, matching the historical
// producer's on-disk byte/bit order; a no-op in the non-legacy codec.
func AlignBits(b combinatorial.U128, width int) combinatorial.U128 {
	out := combinatorial.Zero
	for i := 0; i < width; i++ {
		out = out.SetBitIf(i, b.Bit(width-i-1))
	}
	return out
}

// MarkerPos reproduces the legacy signed-modulo position formula:
//
//	abs((h0 + n*h1) mod (size - 64))
//
// computed in wrapping signed 64-bit arithmetic, ignoring the file's actual
// marker width (the legacy producer always assumed 64).
func MarkerPos(h0, h1 uint64, n int, totalSizeBits uint64) uint64 {
	mashed := int64(h0) + int64(n)*int64(h1) // wrapping signed add/mul
	mod := mashed % (int64(totalSizeBits) - fixedMarkerWidth)
	if mod < 0 {
		mod = -mod
	}
	return uint64(mod)
}

// Params is the parsed form of a sibling ".params" JSON array file:
//
//	[capacity, root_filename, bits_per_element, k, nu, kappa, beta,
//	 n_secondaries, max_value, max_scaledown, use_chunks]
//
// Only the fields the b-field core needs (k, nu, kappa) are exposed.
type Params struct {
	NHashes     uint8
	MarkerWidth uint8
	NMarkerBits uint8
}

// ParamsPath returns the sibling params file path for a legacy bfield file,
// replacing its extension with "params" (Path::with_extension in the
// original).
func ParamsPath(bfieldPath string) string {
	ext := filepath.Ext(bfieldPath)
	stem := strings.TrimSuffix(bfieldPath, ext)
	return stem + ".params"
}

// LoadParams reads and parses the sibling JSON array params file.
func LoadParams(bfieldPath string) (Params, error) {
	path := ParamsPath(bfieldPath)
	f, err := os.Open(path)
	if err != nil {
		return Params{}, fmt.Errorf("legacylayout: opening %s: %w", path, err)
	}
	defer f.Close()

	var raw []json.RawMessage
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return Params{}, fmt.Errorf("legacylayout: decoding %s: %w", path, err)
	}
	if len(raw) < 6 {
		return Params{}, fmt.Errorf("legacylayout: %s has only %d fields, want at least 6", path, len(raw))
	}
	k, err := decodeUint8Field(raw[3])
	if err != nil {
		return Params{}, fmt.Errorf("legacylayout: field 3 (k): %w", err)
	}
	nu, err := decodeUint8Field(raw[4])
	if err != nil {
		return Params{}, fmt.Errorf("legacylayout: field 4 (nu): %w", err)
	}
	kappa, err := decodeUint8Field(raw[5])
	if err != nil {
		return Params{}, fmt.Errorf("legacylayout: field 5 (kappa): %w", err)
	}
	return Params{NHashes: k, MarkerWidth: nu, NMarkerBits: kappa}, nil
}

func decodeUint8Field(raw json.RawMessage) (uint8, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
