// Package cache provides a TTL and capacity bounded key/value cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultTTL        = 5 * time.Minute
	defaultMaxEntries = 1000
)

// entry pairs a cached value with its insertion timestamp. Entries never
// escape this package.
type entry[V any] struct {
	value      V
	insertedAt time.Time
	seq        uint64 // insertion order, used for FIFO eviction
}

// Cache is a concurrency-safe TTL cache with FIFO capacity eviction.
// Eviction is by oldest insertion order, not access order; refreshing a key
// with Set moves it to the back of the eviction queue.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	entries    map[K]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	nextSeq    uint64
	name       string // metrics label
}

// New creates a Cache with the given options applied over defaults.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries:    make(map[K]entry[V]),
		ttl:        defaultTTL,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
		name:       "default",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. An entry whose age has reached the
// TTL is treated as a miss and removed.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.RecordCacheMiss(c.name)
		return zero, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		metrics.RecordCacheExpiry(c.name)
		metrics.RecordCacheMiss(c.name)
		return zero, false
	}
	metrics.RecordCacheHit(c.name)
	return e.value, true
}

// Set inserts or overwrites the value for key with the current timestamp.
// When the entry count would exceed the configured maximum, the single
// oldest-inserted entry is evicted first.
func (c *Cache[K, V]) Set(ctx context.Context, key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.nextSeq++
	c.entries[key] = entry[V]{
		value:      value,
		insertedAt: c.now(),
		seq:        c.nextSeq,
	}
}

// Len returns the current number of entries, including not-yet-swept
// expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge removes all entries.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// evictOldest removes the entry with the smallest insertion sequence.
// Must be called with c.mu held.
func (c *Cache[K, V]) evictOldest() {
	var (
		oldestKey K
		oldestSeq uint64
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.seq < oldestSeq {
			oldestKey = k
			oldestSeq = e.seq
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		metrics.RecordCacheEviction(c.name)
	}
}
