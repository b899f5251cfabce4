// Package repository defines the benchmark record store interface and errors.
package repository

import (
	"context"
	"math/rand"
	"sync"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: period start ASC, then record ID ASC (deterministic).
// In-order traversal yields records oldest period first, which is the order
// the comparator consumes them in, and lets window queries stop early once
// a node's period start passes the filter's upper bound.

// key is the treap ordering key.
type key struct {
	startNano int64
	id        string
}

func (k key) less(other key) bool {
	if k.startNano != other.startNano {
		return k.startNano < other.startNano
	}
	return k.id < other.id
}

// treap node
type node struct {
	key   key
	rec   model.BenchmarkRecord
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, rec model.BenchmarkRecord, prio uint64) *node {
	if n == nil {
		return &node{key: k, rec: rec, prio: prio, size: 1}
	}
	if k.less(n.key) {
		n.left = insert(n.left, k, rec, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, rec, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	if k == n.key {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	} else if k.less(n.key) {
		n.left = deleteNode(n.left, k)
	} else {
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// collectWindow appends records whose period overlaps [startNano, endNano]
// and that match the metric and revenue range predicates. A zero bound
// (startNano or endNano <= 0 with a zero time) is handled by the caller
// passing the widest window.
func collectWindow(n *node, filter model.BenchmarkFilter, out *[]model.BenchmarkRecord) {
	if n == nil {
		return
	}
	endBound := filter.PeriodEnd
	// Subtrees entirely past the window's upper bound cannot match.
	if !endBound.IsZero() && n.key.startNano > endBound.UnixNano() {
		collectWindow(n.left, filter, out)
		return
	}
	collectWindow(n.left, filter, out)
	if matches(n.rec, filter) {
		*out = append(*out, n.rec)
	}
	collectWindow(n.right, filter, out)
}

func matches(r model.BenchmarkRecord, filter model.BenchmarkFilter) bool {
	if r.MetricID != filter.MetricID {
		return false
	}
	if filter.RevenueRange != "" && r.RevenueRange != filter.RevenueRange {
		return false
	}
	if !filter.PeriodStart.IsZero() && r.PeriodEnd.Before(filter.PeriodStart) {
		return false
	}
	if !filter.PeriodEnd.IsZero() && r.PeriodStart.After(filter.PeriodEnd) {
		return false
	}
	return true
}

// TreapStore is the in-memory, period-ordered record store.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]key // record ID -> current treap position
	rng  *rand.Rand
}

// NewTreapStore creates an empty record store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]key),
		rng:  rand.New(rand.NewSource(rand.Int63())), //nolint:gosec // priorities need no crypto strength
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put upserts a record by ID, repositioning it when its period changed.
func (s *TreapStore) Put(ctx context.Context, rec model.BenchmarkRecord) error {
	if rec.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{startNano: rec.PeriodStart.UnixNano(), id: rec.ID}
	if old, ok := s.byID[rec.ID]; ok {
		s.root = deleteNode(s.root, old)
	}
	s.root = insert(s.root, k, rec, s.rng.Uint64())
	s.byID[rec.ID] = k

	metrics.UpdateStoredRecords(len(s.byID))
	return nil
}

// Query returns records matching the filter, ordered by period start.
func (s *TreapStore) Query(ctx context.Context, filter model.BenchmarkFilter) ([]model.BenchmarkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.BenchmarkRecord, 0)
	collectWindow(s.root, filter, &out)
	return out, nil
}

// Get returns a record by ID.
func (s *TreapStore) Get(ctx context.Context, id string) (model.BenchmarkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.byID[id]
	if !ok {
		return model.BenchmarkRecord{}, ErrNotFound
	}
	n := s.root
	for n != nil {
		if k == n.key {
			return n.rec, nil
		}
		if k.less(n.key) {
			n = n.left
		} else {
			n = n.right
		}
	}
	return model.BenchmarkRecord{}, ErrNotFound
}

// Count returns the number of records held.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
