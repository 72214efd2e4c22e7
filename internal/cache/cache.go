// Package cache remembers the last value computed from a set of input files
// and hands it back while the files are unchanged.
//
// Files are compared by size and modification time, not content, so a
// fingerprint costs one stat per file.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/ginjaninja78/order-consolidation/pkg/utils"
)

// Fingerprint summarizes the size and modification time of each path.
// Missing files contribute a marker, so a file appearing or disappearing
// changes the fingerprint. The order of paths matters.
func Fingerprint(paths []string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		size, err := utils.GetFileSize(p)
		if err != nil {
			if utils.IsNotExist(err) {
				fmt.Fprintf(h, "%s\x00missing\x00", p)
				continue
			}
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
		mod, err := utils.GetFileModTime(p)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\x00", p, size, mod.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Cache holds one value keyed by a fingerprint.
type Cache[T any] struct {
	mu          sync.Mutex
	fingerprint string
	value       T
	ok          bool
}

// Get returns the cached value if it was stored under fingerprint.
func (c *Cache[T]) Get(fingerprint string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ok || c.fingerprint != fingerprint {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Put replaces the cached value.
func (c *Cache[T]) Put(fingerprint string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fingerprint = fingerprint
	c.value = value
	c.ok = true
}

// Invalidate drops the cached value.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.fingerprint = ""
	c.value = zero
	c.ok = false
}
