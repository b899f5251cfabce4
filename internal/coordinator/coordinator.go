// Package coordinator wraps gateway access with single-flight deduplication,
// bounded retry with exponential backoff, and a circuit breaker.
package coordinator

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/njdifiore/benchmetrics/internal/adapters/gateway"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// Default retry configuration constants.
const (
	defaultMaxAttempts    = 3
	defaultBaseDelay      = 100 * time.Millisecond
	defaultMaxDelay       = 5 * time.Second
	defaultBackoffFactor  = 2.0
	defaultAttemptTimeout = 10 * time.Second
)

// Coordinator guards all benchmark fetches. Identical concurrent requests
// share one underlying call; transient failures are retried with exponential
// backoff; the breaker fails fast once the upstream is deemed unhealthy.
type Coordinator struct {
	gateway        gateway.Gateway
	breaker        *Breaker
	group          singleflight.Group
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	backoffFactor  float64
	attemptTimeout time.Duration
}

// New creates a Coordinator around gw with configuration options.
func New(gw gateway.Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:        gw,
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		maxDelay:       defaultMaxDelay,
		backoffFactor:  defaultBackoffFactor,
		attemptTimeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewBreaker()
	}
	return c
}

// Fetch retrieves benchmark records for filter. Concurrent calls with the
// same filter key await a single underlying fetch; a waiter whose context is
// cancelled receives ctx.Err() while the shared fetch continues for the
// remaining waiters.
func (c *Coordinator) Fetch(ctx context.Context, filter model.BenchmarkFilter) ([]model.BenchmarkRecord, error) {
	// Detach the shared fetch from this waiter's cancellation. Registering
	// the in-flight key and joining it is atomic inside the group.
	shared := context.WithoutCancel(ctx)

	ch := c.group.DoChan(filter.Key(), func() (any, error) {
		return c.fetchWithRetry(shared, filter)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.RecordFetchCoalesced()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.BenchmarkRecord), nil
	}
}

// fetchWithRetry executes the attempt loop. Each attempt runs under its own
// deadline; a slow attempt still consumes an attempt once that deadline
// fires. Only transient gateway failures are retried or counted by the
// breaker.
func (c *Coordinator) fetchWithRetry(ctx context.Context, filter model.BenchmarkFilter) ([]model.BenchmarkRecord, error) {
	var (
		records  []model.BenchmarkRecord
		attempts int
	)

	op := func() error {
		if attempts > 0 {
			metrics.RecordFetchRetry()
		}
		attempts++
		metrics.RecordFetchAttempt()

		if err := c.breaker.Allow(); err != nil {
			return backoff.Permanent(err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		start := time.Now()
		recs, err := c.gateway.Fetch(attemptCtx, filter)
		metrics.RecordFetchLatency(float64(time.Since(start).Microseconds()) / 1000.0)

		if err != nil {
			if gateway.IsTransient(err) {
				c.breaker.ReportFailure()
				return err
			}
			return backoff.Permanent(err)
		}

		c.breaker.ReportSuccess()
		records = recs
		return nil
	}

	policy := backoff.WithContext(c.newBackOff(), ctx)
	if err := backoff.Retry(op, backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1))); err != nil {
		if !gateway.IsTransient(err) {
			// CircuitOpenError and other non-transient failures pass through
			// unchanged; they were never retried.
			return nil, err
		}
		metrics.RecordFetchFailure()
		return nil, &FetchError{
			Endpoint: c.gateway.Endpoint(),
			Attempts: attempts,
			Err:      err,
		}
	}
	return records, nil
}

// newBackOff builds the exponential policy:
// delay = min(maxDelay, base * factor^(attempt-1)).
func (c *Coordinator) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = c.backoffFactor
	b.MaxInterval = c.maxDelay
	b.RandomizationFactor = 0 // deterministic delays, the attempt budget is small
	b.MaxElapsedTime = 0      // bounded by attempt count, not wall clock
	b.Reset()
	return b
}

// BreakerState exposes the breaker state for monitoring.
func (c *Coordinator) BreakerState() State {
	return c.breaker.CurrentState()
}
