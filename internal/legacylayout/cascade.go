//go:build legacy

package legacylayout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cascade is a read-only legacy bfield: a primary member plus zero or more
// secondary members, loaded the way the original's
// `#[cfg(feature = "legacy")] BField::from_file` does: open the literal path
// as M0, then open "<stem>.mmap.secondary.NNN" for N = 1, 2, ... until one is
// missing. Without this, lookups against a genuine multi-member legacy
// bfield would only ever consult M0 and silently miss every key that fell
// through to a secondary during the original build.
type Cascade struct {
	members []*Member
}

// OpenCascade opens a legacy bfield cascade rooted at filename.
func OpenCascade(filename string) (*Cascade, error) {
	first, err := OpenMember(filename)
	if err != nil {
		return nil, err
	}
	members := []*Member{first}
	for n := 1; ; n++ {
		p := secondaryPath(filename, n)
		if _, err := os.Stat(p); err != nil {
			break
		}
		m, err := OpenMember(p)
		if err != nil {
			for _, prior := range members {
				_ = prior.Close()
			}
			return nil, fmt.Errorf("legacylayout: opening secondary %s: %w", p, err)
		}
		members = append(members, m)
	}
	return &Cascade{members: members}, nil
}

// secondaryPath mirrors Path::with_extension(stem, "mmap.secondary.{:03}"):
// secondary N of a cascade rooted at filename lives beside it as
// "<stem>.mmap.secondary.NNN".
func secondaryPath(filename string, n int) string {
	dir := filepath.Dir(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return filepath.Join(dir, fmt.Sprintf("%s.mmap.secondary.%03d", stem, n))
}

// Close closes every member's underlying store.
func (c *Cascade) Close() error {
	var firstErr error
	for _, m := range c.members {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Get walks members in order: Indeterminate falls through to the next
// member, None/Some resolve immediately, and running out of members with
// nothing resolved collapses to not-found (the same lossy collapse the
// modern cascade's Get documents).
func (c *Cascade) Get(key []byte) (found bool, value uint32) {
	for _, m := range c.members {
		found, indeterminate, v := m.Get(key)
		if indeterminate {
			continue
		}
		if found {
			return true, v
		}
		return false, 0
	}
	return false, 0
}
