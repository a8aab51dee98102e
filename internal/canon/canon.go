// Package canon provides the process-wide canonicalization cache for catalog
// value objects.
//
// Canonicalize calls collapse structurally-equal formats, sample dimensions,
// categories, and bounding boxes to one shared instance, so repeated catalog
// traversals (re-opening the same format many times) do not rebuild identical
// band/category structures.
//
// Retention is weak: an entry is reclaimable once no caller holds the
// returned instance. Callers may rely only on "equal values map to the same
// instance while any reference is alive", never on indefinite retention.
//
// The cache is an explicitly constructed component, injected where needed,
// never package-global state.
package canon

import (
	"runtime"
	"sync"
	"weak"

	"github.com/roach88/rastercat/internal/catalog"
)

// Cache deduplicates immutable catalog value objects by structural equality.
// All methods are safe for concurrent use.
type Cache struct {
	formats    interner[catalog.Format]
	dimensions interner[catalog.SampleDimension]
	categories interner[catalog.Category]
	boxes      interner[catalog.BoundingBox]
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Format returns the canonical instance equal to f, storing f if none exists.
func (c *Cache) Format(f *catalog.Format) *catalog.Format {
	return c.formats.intern(f.CanonicalKey(), f, (*catalog.Format).Equal)
}

// SampleDimension returns the canonical instance equal to d, storing d if
// none exists.
func (c *Cache) SampleDimension(d *catalog.SampleDimension) *catalog.SampleDimension {
	return c.dimensions.intern(d.CanonicalKey(), d, (*catalog.SampleDimension).Equal)
}

// Category returns the canonical instance equal to cat, storing cat if none
// exists.
func (c *Cache) Category(cat *catalog.Category) *catalog.Category {
	return c.categories.intern(cat.CanonicalKey(), cat, (*catalog.Category).Equal)
}

// BoundingBox returns the canonical instance equal to b, storing b if none
// exists.
func (c *Cache) BoundingBox(b *catalog.BoundingBox) *catalog.BoundingBox {
	return c.boxes.intern(b.CanonicalKey(), b, (*catalog.BoundingBox).Equal)
}

// interner is a weak-valued set keyed by canonical content key.
//
// Values sharing a key are kept in a small bucket and confirmed by value
// equality before being returned, so even a key collision cannot conflate
// distinct values. Buckets are pruned by runtime cleanups once their values
// are collected.
type interner[T any] struct {
	mu      sync.Mutex
	entries map[string][]weak.Pointer[T]
}

// intern returns the stored instance equal to v, or stores and returns v.
// The compare-and-insert is atomic with respect to other callers.
func (in *interner[T]) intern(key string, v *T, eq func(a, b *T) bool) *T {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.entries == nil {
		in.entries = make(map[string][]weak.Pointer[T])
	}

	bucket := in.entries[key]
	live := bucket[:0]
	var found *T
	for _, wp := range bucket {
		p := wp.Value()
		if p == nil {
			continue // collected, drop from bucket
		}
		live = append(live, wp)
		if found == nil && eq(p, v) {
			found = p
		}
	}
	if found != nil {
		in.entries[key] = live
		return found
	}

	live = append(live, weak.Make(v))
	in.entries[key] = live
	runtime.AddCleanup(v, func(k string) { in.prune(k) }, key)
	return v
}

// prune drops collected pointers for a key, removing the bucket when empty.
// Runs on the runtime cleanup goroutine after a stored value is reclaimed.
func (in *interner[T]) prune(key string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	bucket, ok := in.entries[key]
	if !ok {
		return
	}
	live := bucket[:0]
	for _, wp := range bucket {
		if wp.Value() != nil {
			live = append(live, wp)
		}
	}
	if len(live) == 0 {
		delete(in.entries, key)
		return
	}
	in.entries[key] = live
}

// size returns the number of keys currently stored. Used for testing.
func (in *interner[T]) size() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.entries)
}
