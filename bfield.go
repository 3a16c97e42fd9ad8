// Package bfield implements the cascade: an ordered sequence of members
// (one primary plus shrinking secondaries) that turns per-member
// indeterminacy into a probabilistic-but-sound approximate map. Grounded on
// original_source/src/bfield.rs, restated with the teacher's file-set
// loading and error-wrapping conventions (multiepoch.go's "load until the
// next index is absent" loop; err.go's sentinel error style).
package bfield

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kmerfield/bfield/internal/bitstore"
	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/kmerfield/bfield/internal/member"
)

// Sentinel errors surfaced at the package boundary, per spec.md §7.
var (
	ErrNotFound        = errors.New("bfield: member 0 file not found")
	ErrHeaderMismatch  = bitstore.ErrHeaderMismatch
	ErrReadOnly        = member.ErrReadOnly
	ErrPassOutOfRange  = errors.New("bfield: pass is out of range for this cascade")
	ErrValueOutOfRange = member.ErrValueOutOfRange
)

// Result is the outer, cascade-level verdict. The spec documents collapsing
// "indeterminate at every layer" to None as lossy but acceptable; Get keeps
// that contract, while LookupVerbose exposes the richer classification for
// callers who want it (DESIGN.md's additive decision on the spec's open
// question).
type Result struct {
	Found bool
	Value member.Val
}

// VerboseResult distinguishes "definitely absent" from "indeterminate
// everywhere" instead of collapsing both to None.
type VerboseResult struct {
	State member.State // StateNone, StateSome, or StateIndeterminate
	Value member.Val
}

// BField is the cascade of members M0..M_{s-1}.
type BField[T member.Params] struct {
	members  []*member.Member[T]
	readOnly bool
	basePath string
}

// Sizes computes the per-member bit sizes for a cascade of s members
// starting at size, shrinking geometrically by beta but never below
// size*maxBeta, per spec.md §3.
func Sizes(size uint64, s int, beta, maxBeta float64) []uint64 {
	sizes := make([]uint64, s)
	sizes[0] = size
	floor := uint64(float64(size) * maxBeta)
	for n := 1; n < s; n++ {
		shrunk := uint64(float64(sizes[n-1]) * beta)
		if shrunk < floor {
			shrunk = floor
		}
		sizes[n] = shrunk
	}
	return sizes
}

// memberPath returns the on-disk path for member n of a cascade rooted at
// base: foo/bar.ext -> foo/bar{n}.bfd (e.g. foo/bar0.bfd).
func memberPath(base string, n int) string {
	dir := filepath.Dir(base)
	stem := strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	name := stem + strconv.Itoa(n) + ".bfd"
	return filepath.Join(dir, name)
}

// Create builds a fresh, writable cascade of s members rooted at path, with
// only M0 carrying userParams. It warms the combinadic rank/unrank table
// before returning, per spec.md §5's codec warm-up requirement.
func Create[T member.Params](path string, size uint64, k, nu, kappa uint8, beta, maxBeta float64, s int, userParams *T) (*BField[T], error) {
	if s < 1 {
		return nil, fmt.Errorf("bfield: s must be >= 1, got %d", s)
	}
	combinatorial.Warm()

	sizes := Sizes(size, s, beta, maxBeta)
	members := make([]*member.Member[T], 0, s)
	for n, sz := range sizes {
		p := memberPath(path, n)
		var params *T
		if n == 0 {
			params = userParams
		}
		m, err := member.Create[T](p, sz, k, nu, kappa, params)
		if err != nil {
			for _, prior := range members {
				_ = prior.Close()
			}
			return nil, fmt.Errorf("bfield: creating member %d at %s: %w", n, p, err)
		}
		members = append(members, m)
	}
	slog.Info("bfield: cascade created", "path", path, "members", s, "size0", size)
	return &BField[T]{members: members, basePath: path}, nil
}

// FromFile opens an existing cascade. M0 must exist; M1, M2, ... are loaded
// until the next-indexed file is missing, mirroring the teacher's
// multiepoch loader's "stop at the first absent index" pattern.
func FromFile[T member.Params](path string, readOnly bool, decode member.Decoder[T]) (*BField[T], error) {
	m0Path := memberPath(path, 0)
	m0, err := member.Open[T](m0Path, readOnly, decode)
	if err != nil {
		switch {
		case errors.Is(err, ErrHeaderMismatch):
			return nil, err
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, m0Path, err)
		default:
			// genuine I/O failures (permission denied, disk errors, ...)
			// propagate unchanged rather than being reclassified as absence.
			return nil, fmt.Errorf("bfield: opening %s: %w", m0Path, err)
		}
	}
	members := []*member.Member[T]{m0}
	for n := 1; ; n++ {
		p := memberPath(path, n)
		mn, err := member.Open[T](p, readOnly, nil)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				break
			}
			for _, prior := range members {
				_ = prior.Close()
			}
			return nil, fmt.Errorf("bfield: opening member %d at %s: %w", n, p, err)
		}
		members = append(members, mn)
	}
	combinatorial.Warm()
	return &BField[T]{members: members, readOnly: readOnly, basePath: path}, nil
}

// Insert places (key, value) into member `pass` after verifying that no
// earlier member has already resolved the key, per spec.md §4.4.
func (b *BField[T]) Insert(key []byte, value member.Val, pass int) (bool, error) {
	if pass < 0 || pass >= len(b.members) {
		return false, ErrPassOutOfRange
	}
	for i := 0; i < pass; i++ {
		res, err := b.members[i].Lookup(key)
		if err != nil {
			return false, err
		}
		if res.State != member.StateIndeterminate {
			return false, nil
		}
	}
	if err := b.members[pass].Insert(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Get walks members in order, returning the first None/Some verdict, or
// collapsing to not-found if every member is indeterminate.
func (b *BField[T]) Get(key []byte) (Result, error) {
	v, err := b.LookupVerbose(key)
	if err != nil {
		return Result{}, err
	}
	if v.State == member.StateSome {
		return Result{Found: true, Value: v.Value}, nil
	}
	return Result{}, nil
}

// LookupVerbose distinguishes a key that every member found indeterminate
// from one that a member definitively ruled absent, instead of collapsing
// both to "not found" the way Get does.
func (b *BField[T]) LookupVerbose(key []byte) (VerboseResult, error) {
	for _, m := range b.members {
		res, err := m.Lookup(key)
		if err != nil {
			return VerboseResult{}, err
		}
		switch res.State {
		case member.StateNone:
			return VerboseResult{State: member.StateNone}, nil
		case member.StateSome:
			return VerboseResult{State: member.StateSome, Value: res.Value}, nil
		}
	}
	return VerboseResult{State: member.StateIndeterminate}, nil
}

// ForceInsert applies mask-or-insert across members in order until one
// accepts the key (inserted fresh, or already correctly present).
func (b *BField[T]) ForceInsert(key []byte, value member.Val) (bool, error) {
	for _, m := range b.members {
		ok, err := m.MaskOrInsert(key, value)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Params returns M0's user parameters, if any were stored.
func (b *BField[T]) Params() (T, bool) {
	return b.members[0].Params()
}

// MockParams overrides M0's in-memory parameters without touching disk.
func (b *BField[T]) MockParams(p T) {
	b.members[0].MockParams(p)
}

// MemberInfo mirrors one member's (size, k, nu, kappa) tuple.
type MemberInfo = member.Info

// Info returns the (size, k, nu, kappa) tuple for every member in order.
func (b *BField[T]) Info() []MemberInfo {
	out := make([]MemberInfo, len(b.members))
	for i, m := range b.members {
		out[i] = m.Info()
	}
	return out
}

// BuildParams returns (k, nu, kappa, [size per member]) — the tuple a
// caller needs to recreate an equivalent cascade from scratch.
func (b *BField[T]) BuildParams() (k, nu, kappa uint8, sizes []uint64) {
	infos := b.Info()
	sizes = make([]uint64, len(infos))
	for i, info := range infos {
		sizes[i] = info.SizeBits
	}
	first := infos[0]
	return first.NHashes, first.MarkerWidth, first.NMarkerBits, sizes
}

// Close closes every member's underlying store.
func (b *BField[T]) Close() error {
	var firstErr error
	for _, m := range b.members {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Sync flushes every writable member to disk.
func (b *BField[T]) Sync() error {
	var firstErr error
	for _, m := range b.members {
		if err := m.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
