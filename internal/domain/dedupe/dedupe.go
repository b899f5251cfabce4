// Package dedupe defines the interface for benchmark record idempotency
// tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen benchmark record IDs so re-submitted records are
// processed at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing it to be retried.
	// Used when a record was marked as seen but never made it onto the
	// ingest queue (e.g. backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// defaultMaxSize bounds memory for long-running processes.
const defaultMaxSize = 50000

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction ring.
// When the bound is reached the oldest recorded ID is forgotten first, so a
// very old record re-submitted after heavy churn may be processed again.
// That trade is acceptable: the downstream store upserts by ID.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> owning ring slot (-1 in unbounded mode)
	order   []string       // insertion order ring
	next    int            // ring index of the oldest entry / next overwrite target
	maxSize int            // 0 or negative means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.order = make([]string, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	slot := -1
	if d.maxSize > 0 {
		slot = d.next
		// Overwrite the oldest ring slot, forgetting its ID if the slot
		// still owns it. Unrecorded and re-recorded IDs own newer slots.
		if old := d.order[slot]; old != "" {
			if owner, exists := d.seen[old]; exists && owner == slot {
				delete(d.seen, old)
				d.size.Add(-1)
			}
		}
		d.order[slot] = id
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[id] = slot
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen set. Its ring slot is reclaimed
// naturally when the ring wraps around.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Size returns the current number of tracked IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
