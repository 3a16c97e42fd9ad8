// Package bitstore implements the memory-mapped bit vector collaborator
// spec.md treats as external: create/open a file carrying a magic-prefixed
// header plus a zero-initialized bit region, and random-access get/set of
// up to 128-bit ranges within it. Grounded on bucketteer's header framing
// (write.go/read.go) and compactindexsized's magic+length+payload shape.
package bitstore

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	mmapgo "github.com/edsrzf/mmap-go"
	"github.com/kmerfield/bfield/internal/combinatorial"
	"github.com/valyala/bytebufferpool"
	xmmap "golang.org/x/exp/mmap"
	"golang.org/x/sys/unix"
)

// Store is a memory-mapped bit vector with a magic-prefixed header.
type Store struct {
	path       string
	readOnly   bool
	header     []byte
	headerSize int64
	sizeBits   uint64

	// exactly one of these is non-nil, depending on how the store was opened.
	writable mmapgo.MMap
	readable io.ReaderAt // *xmmap.ReaderAt in practice
	memory   []byte

	file *os.File
}

// Create creates a new, writable store at path with the given header
// payload and a zeroed bit region of sizeBits bits.
func Create(path string, sizeBits uint64, headerPayload []byte) (*Store, error) {
	header := encodeHeader(headerPayload)
	totalBytes := int64(len(header)) + int64((sizeBits+7)/8)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("bitstore: create %s: %w", path, err)
	}
	if err := f.Truncate(totalBytes); err != nil {
		f.Close()
		return nil, fmt.Errorf("bitstore: truncate %s: %w", path, err)
	}
	if _, err := f.WriteAt(header, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("bitstore: writing header of %s: %w", path, err)
	}

	m, err := mmapgo.Map(f, mmapgo.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bitstore: mmap %s: %w", path, err)
	}

	return &Store{
		path:       path,
		header:     headerPayload,
		headerSize: int64(len(header)),
		sizeBits:   sizeBits,
		writable:   m,
		file:       f,
	}, nil
}

// Open opens an existing store. When readOnly is false the returned Store
// supports SetRange; either way it is backed by an mmap of the file.
func Open(path string, readOnly bool) (*Store, error) {
	if readOnly {
		return openReadOnly(path)
	}
	return openWritable(path)
}

func openWritable(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("bitstore: open %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	payload, headerSize, err := decodeHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	m, err := mmapgo.Map(f, mmapgo.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bitstore: mmap %s: %w", path, err)
	}
	sizeBits := uint64(stat.Size()-headerSize) * 8
	return &Store{
		path:       path,
		header:     payload,
		headerSize: headerSize,
		sizeBits:   sizeBits,
		writable:   m,
		file:       f,
	}, nil
}

// openReadOnly mirrors bucketteer.OpenMMAP: golang.org/x/exp/mmap for the
// read path, plus a best-effort posix_fadvise(RANDOM) hint (see
// warmReadOnly).
func openReadOnly(path string) (*Store, error) {
	r, err := xmmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bitstore: open %s: %w", path, err)
	}
	payload, headerSize, err := decodeHeader(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	sizeBits := uint64(r.Len()-int(headerSize)) * 8
	s := &Store{
		path:       path,
		readOnly:   true,
		header:     payload,
		headerSize: headerSize,
		sizeBits:   sizeBits,
		readable:   r,
	}
	s.warmReadOnly()
	return s, nil
}

// NewInMemory backs a store with a plain byte slice instead of a file — the
// in-memory member variant the spec's own test scenarios rely on (S1-S5).
func NewInMemory(sizeBits uint64, headerPayload []byte) *Store {
	header := encodeHeader(headerPayload)
	buf := make([]byte, len(header)+int((sizeBits+7)/8))
	copy(buf, header)
	return &Store{
		header:     headerPayload,
		headerSize: int64(len(header)),
		sizeBits:   sizeBits,
		memory:     buf,
	}
}

func (s *Store) Header() []byte { return s.header }

func (s *Store) Size() uint64 { return s.sizeBits }

func (s *Store) ReadOnly() bool { return s.readOnly }

func (s *Store) data() []byte {
	switch {
	case s.memory != nil:
		return s.memory[s.headerSize:]
	case s.writable != nil:
		return s.writable[s.headerSize:]
	default:
		panic("bitstore: read-only mmap store cannot be accessed as a byte slice")
	}
}

// GetRange returns the (hi-lo) bits starting at bit index lo, hi-lo <= 128.
func (s *Store) GetRange(lo, hi uint64) (combinatorial.U128, error) {
	width := hi - lo
	if width > 128 {
		return combinatorial.Zero, ErrRangeTooWide
	}
	if s.readable != nil {
		return s.getRangeReadOnly(lo, hi)
	}
	return getRange(s.data(), lo, width), nil
}

// SetRange ORs value's low (hi-lo) bits into the vector starting at bit lo.
func (s *Store) SetRange(lo, hi uint64, value combinatorial.U128) error {
	if s.readOnly {
		return ErrReadOnly
	}
	width := hi - lo
	if width > 128 {
		return ErrRangeTooWide
	}
	setRangeOR(s.data(), lo, width, value)
	return nil
}

// Rank returns the popcount of bits in [lo, hi).
func (s *Store) Rank(lo, hi uint64) (int, error) {
	if s.readable != nil {
		bb := bytebufferpool.Get()
		defer bytebufferpool.Put(bb)
		n := int((hi+7)/8 - lo/8)
		bb.B = append(bb.B[:0], make([]byte, n)...)
		if _, err := s.readable.ReadAt(bb.B, s.headerSize+int64(lo/8)); err != nil {
			return 0, fmt.Errorf("bitstore: rank read: %w", err)
		}
		return popcountRange(bb.B, lo%8, lo%8+(hi-lo)), nil
	}
	return popcountRange(s.data(), lo, hi), nil
}

// getRangeReadOnly reads the marker window from a read-only mmap reader,
// using a pooled scratch buffer for the byte-aligned read (this is the hot
// path for every lookup against an on-disk member).
func (s *Store) getRangeReadOnly(lo, hi uint64) (combinatorial.U128, error) {
	byteLo := lo / 8
	byteHi := (hi + 7) / 8

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	bb.B = append(bb.B[:0], make([]byte, byteHi-byteLo)...)

	if _, err := s.readable.ReadAt(bb.B, s.headerSize+int64(byteLo)); err != nil {
		return combinatorial.Zero, fmt.Errorf("bitstore: range read: %w", err)
	}
	return getRange(bb.B, lo-byteLo*8, hi-lo), nil
}

// warmReadOnly issues a posix_fadvise(RANDOM) hint over the whole file so
// the page cache stops assuming sequential access, same as
// bucketteer.NewReader. The hint is only issued when the read-only reader
// exposes its file descriptor (an Fd method); otherwise it does nothing.
func (s *Store) warmReadOnly() {
	type fd interface{ Fd() uintptr }
	f, ok := s.readable.(fd)
	if !ok {
		return
	}
	if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM); err != nil {
		slog.Warn("bitstore: fadvise(RANDOM) failed", "path", s.path, "error", err)
	}
}

// Prefetch issues a read-ahead hint for the byte containing bit position
// pos. It does nothing for pure in-memory stores, or for read-only stores
// whose reader exposes no file descriptor; it never changes semantics, only
// latency.
func (s *Store) Prefetch(pos uint64) {
	byteOff := int64(s.headerSize) + int64(pos/8)
	type fd interface{ Fd() uintptr }
	switch {
	case s.file != nil:
		_ = unix.Fadvise(int(s.file.Fd()), byteOff, 1, unix.FADV_WILLNEED)
	default:
		if f, ok := s.readable.(fd); ok {
			_ = unix.Fadvise(int(f.Fd()), byteOff, 1, unix.FADV_WILLNEED)
		}
	}
}

// Sync flushes writable stores to disk.
func (s *Store) Sync() error {
	if s.writable != nil {
		return s.writable.Flush()
	}
	return nil
}

// Close releases the store's resources.
func (s *Store) Close() error {
	switch {
	case s.writable != nil:
		if err := s.writable.Unmap(); err != nil {
			return err
		}
		return s.file.Close()
	case s.readable != nil:
		return s.readable.Close()
	default:
		return nil
	}
}
