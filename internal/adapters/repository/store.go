// Package repository defines the benchmark record store interface and errors.
package repository

import (
	"context"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Store provides read/write access to the benchmark record set.
type Store interface {
	// Put upserts a record by ID. Records are kept ordered by period start
	// so window queries stay cheap.
	Put(ctx context.Context, rec model.BenchmarkRecord) error

	// Query returns all records matching the filter: same metric, same
	// revenue range (when set), and a period overlapping the filter window.
	Query(ctx context.Context, filter model.BenchmarkFilter) ([]model.BenchmarkRecord, error)

	// Get returns a record by ID. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.BenchmarkRecord, error)

	// Count returns the number of records held.
	Count(ctx context.Context) int
}
