package bitstore

import "errors"

var (
	// ErrHeaderMismatch is returned when a file's magic bytes don't match,
	// or its header payload cannot be made sense of by the caller.
	ErrHeaderMismatch = errors.New("bitstore: header magic mismatch")
	// ErrReadOnly is returned by any mutating call against a read-only store.
	ErrReadOnly = errors.New("bitstore: store is read-only")
	// ErrRangeTooWide is returned when a get/set range spans more than 128 bits.
	ErrRangeTooWide = errors.New("bitstore: range exceeds 128 bits")
)
