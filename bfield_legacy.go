//go:build legacy

package bfield

import "github.com/kmerfield/bfield/internal/legacylayout"

// LegacyResult mirrors Result but for a legacy-format cascade.
type LegacyResult struct {
	Found bool
	Value uint32
}

// FromLegacyFile opens a historical bfield cascade (see spec.md §9):
// bit-reversed markers, signed-modulo positions fixed at a 64-bit marker
// width, a sibling ".params" JSON file instead of an in-file header, and
// secondary members named "<stem>.mmap.secondary.NNN" beside the primary
// file. Only built with -tags legacy.
func FromLegacyFile(path string) (*legacylayout.Cascade, error) {
	return legacylayout.OpenCascade(path)
}

// GetLegacy walks the legacy cascade for key, collapsing "indeterminate at
// every member" to not-found the same way the modern cascade's Get does.
func GetLegacy(c *legacylayout.Cascade, key []byte) LegacyResult {
	found, value := c.Get(key)
	return LegacyResult{Found: found, Value: value}
}
