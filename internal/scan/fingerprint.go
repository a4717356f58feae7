package scan

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Fingerprint derives an order-independent digest of a file listing.
// It is only ever compared for equality, so a sorted join is enough.
func Fingerprint(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, "\n")
}

// FingerprintCache remembers the last published fingerprint and scan
// time for one monitoring session. It is never persisted.
type FingerprintCache struct {
	mu       sync.Mutex
	current  string
	primed   bool
	lastScan time.Time
}

// Changed reports whether fp differs from the cached fingerprint. The
// first call after construction or invalidation always reports true.
func (c *FingerprintCache) Changed(fp string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.primed || c.current != fp
}

// Store records fp as the published fingerprint.
func (c *FingerprintCache) Store(fp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = fp
	c.primed = true
}

// Invalidate forgets the cached fingerprint, forcing the next pass to
// republish. Called when the folder set changes.
func (c *FingerprintCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ""
	c.primed = false
}

// Touch refreshes the last-scan timestamp.
func (c *FingerprintCache) Touch(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastScan = t
}

// LastScan returns the time of the most recent scan, zero if none ran.
func (c *FingerprintCache) LastScan() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastScan
}
