package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njdifiore/benchmetrics/internal/adapters/repository"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// MemoryGateway is an in-process Gateway backed by the benchmark record
// store. It is used by tests, fixtures and the default service wiring, and
// can be scripted to fail for resilience testing.
type MemoryGateway struct {
	mu       sync.Mutex
	store    repository.Store
	endpoint string
	latency  time.Duration

	// failures is consumed one per Fetch; a nil entry means success.
	failures []error
	calls    int
}

// MemoryOption applies a configuration option to the MemoryGateway.
type MemoryOption func(*MemoryGateway)

// WithStore backs the gateway with an existing record store, letting the
// ingest pipeline and the gateway share one record set.
func WithStore(store repository.Store) MemoryOption {
	return func(g *MemoryGateway) {
		if store != nil {
			g.store = store
		}
	}
}

// WithRecords seeds the gateway. Records without an ID get a uuid.
func WithRecords(records []model.BenchmarkRecord) MemoryOption {
	return func(g *MemoryGateway) {
		g.Seed(records)
	}
}

// WithEndpoint labels the gateway for error annotation.
func WithEndpoint(endpoint string) MemoryOption {
	return func(g *MemoryGateway) {
		if endpoint != "" {
			g.endpoint = endpoint
		}
	}
}

// WithLatency adds a fixed delay per fetch, honoring context cancellation.
func WithLatency(d time.Duration) MemoryOption {
	return func(g *MemoryGateway) {
		if d > 0 {
			g.latency = d
		}
	}
}

// WithFailureScript queues per-call outcomes; entry i is returned by call i
// (nil meaning success). Calls beyond the script succeed.
func WithFailureScript(failures []error) MemoryOption {
	return func(g *MemoryGateway) {
		g.failures = failures
	}
}

// NewMemoryGateway creates a new in-memory gateway with configuration options.
func NewMemoryGateway(opts ...MemoryOption) *MemoryGateway {
	g := &MemoryGateway{
		endpoint: "memory://benchmarks",
		store:    repository.NewTreapStore(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fetch returns records matching the filter. Periods match when they overlap
// the filter window; zero filter bounds match everything.
func (g *MemoryGateway) Fetch(ctx context.Context, filter model.BenchmarkFilter) ([]model.BenchmarkRecord, error) {
	g.mu.Lock()
	call := g.calls
	g.calls++
	var scripted error
	if call < len(g.failures) {
		scripted = g.failures[call]
	}
	g.mu.Unlock()

	if g.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.latency):
		}
	}

	if scripted != nil {
		return nil, scripted
	}

	return g.store.Query(ctx, filter)
}

// Endpoint identifies the gateway target.
func (g *MemoryGateway) Endpoint() string { return g.endpoint }

// Calls returns how many times Fetch has been invoked.
func (g *MemoryGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Seed loads records into the backing store. Records without an ID get a
// uuid; existing IDs are overwritten.
func (g *MemoryGateway) Seed(records []model.BenchmarkRecord) {
	ctx := context.Background()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		_ = g.store.Put(ctx, records[i])
	}
}

// Store exposes the backing record store for ingest wiring.
func (g *MemoryGateway) Store() repository.Store { return g.store }
