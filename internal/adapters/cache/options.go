package cache

import "time"

// Option applies a configuration option to the Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithTTL sets how long an entry stays valid after insertion.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of entries kept before FIFO eviction.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock injects the time source, used by tests to advance time.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// WithName labels the cache in emitted metrics.
func WithName[K comparable, V any](name string) Option[K, V] {
	return func(c *Cache[K, V]) {
		if name != "" {
			c.name = name
		}
	}
}
