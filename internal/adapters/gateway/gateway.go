// Package gateway defines the benchmark data source contract consumed by the
// request coordinator, plus an in-memory implementation.
package gateway

import (
	"context"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Gateway fetches raw benchmark records from the upstream data source.
// Implementations may fail with NetworkError or TimeoutError, both of which
// are transient and retryable by the coordinator. An empty result is not an
// error.
type Gateway interface {
	Fetch(ctx context.Context, filter model.BenchmarkFilter) ([]model.BenchmarkRecord, error)

	// Endpoint identifies the upstream target for error annotation.
	Endpoint() string
}
