// Package worker defines worker contracts for asynchronous benchmark record
// ingestion.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/njdifiore/benchmetrics/internal/adapters/mq/queue"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/internal/domain/validate"
	"github.com/njdifiore/benchmetrics/pkg/logger"
	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Record abstracts what workers read off the queue.
type Record = queue.Record

// Storer persists validated benchmark records.
type Storer interface {
	Put(ctx context.Context, rec model.BenchmarkRecord) error
}

// Validator rejects records that must not reach the store.
type Validator interface {
	ValidateRecord(rec model.BenchmarkRecord) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker processes queued records and writes them to the store.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// IngestWorker implements Worker for benchmark record intake.
type IngestWorker struct {
	queue     Queue
	validator Validator
	store     Storer
	name      string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewIngestWorker creates a new worker with configuration options.
func NewIngestWorker(q Queue, validator Validator, store Storer, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:     q,
		validator: validator,
		store:     store,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("ingest"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *IngestWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	recordChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-recordChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processRecord(ctx, rec); err != nil {
				w.logger.Error(ctx, "error ingesting record", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processRecord validates and stores a single record.
func (w *IngestWorker) processRecord(ctx context.Context, rec Record) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordIngestLatency(float64(latency))
	}()

	if err := w.validator.ValidateRecord(rec); err != nil {
		metrics.RecordIngestRejected(rejectionReason(err))
		w.logger.Warn(ctx, "record rejected",
			logger.String("recordID", rec.ID),
			logger.String("metric", string(rec.MetricID)),
			logger.Error(err),
		)
		return fmt.Errorf("record %s rejected: %w", rec.ID, err)
	}

	if err := w.store.Put(ctx, rec); err != nil {
		metrics.RecordIngestRejected("store_error")
		w.logger.Error(ctx, "record store failed",
			logger.String("recordID", rec.ID),
			logger.Error(err),
		)
		return fmt.Errorf("store failed for record %s: %w", rec.ID, err)
	}

	metrics.RecordIngestAccepted()
	return nil
}

// rejectionReason produces a low-cardinality metric label from a validation
// error.
func rejectionReason(err error) string {
	var typed *validate.RecordError
	if errors.As(err, &typed) {
		return typed.Field
	}
	return "invalid"
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*IngestWorker
	queue     Queue
	validator Validator
	store     Storer

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, validator Validator, store Storer) *Pool {
	if workerCount < 1 {
		workerCount = min(runtime.NumCPU(), defaultWorkerCount)
	}

	pool := &Pool{
		workers:   make([]*IngestWorker, workerCount),
		queue:     q,
		validator: validator,
		store:     store,
		logger:    logger.Get().Named("ingest-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewIngestWorker(
			q,
			validator,
			store,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown gracefully shuts down the entire worker pool, draining the queue
// first.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new records
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
