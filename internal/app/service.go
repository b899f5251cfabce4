// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/adapters/cache"
	"github.com/njdifiore/benchmetrics/internal/adapters/gateway"
	"github.com/njdifiore/benchmetrics/internal/adapters/mq/queue"
	"github.com/njdifiore/benchmetrics/internal/adapters/mq/worker"
	"github.com/njdifiore/benchmetrics/internal/adapters/repository"
	"github.com/njdifiore/benchmetrics/internal/coordinator"
	"github.com/njdifiore/benchmetrics/internal/domain/calc"
	"github.com/njdifiore/benchmetrics/internal/domain/compare"
	"github.com/njdifiore/benchmetrics/internal/domain/dedupe"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/internal/domain/validate"
	"github.com/njdifiore/benchmetrics/pkg/logger"
)

// Service implements the API dependencies for the benchmark engine. All
// shared mutable state (caches, breaker counters, pending fetches) lives in
// the injected components; the service itself only guards its lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components
	calculator calc.Calculator
	comparator *compare.Comparator
	coord      *coordinator.Coordinator
	gateway    gateway.Gateway

	// Ingest pipeline
	store       repository.Store
	ingestQueue queue.Queue
	ingestPool  *worker.Pool
	deduper     dedupe.Deduper

	// Configuration
	cacheTTL             time.Duration
	cacheMaxEntries      int
	decimalPlaces        int32
	minConfidence        float64
	minSampleSize        int
	targetSampleSize     int
	confidenceLevel      float64
	seasonalityThreshold float64
	retryMaxAttempts     int
	retryBaseDelay       time.Duration
	retryMaxDelay        time.Duration
	breakerThreshold     int
	breakerResetTimeout  time.Duration
	fetchAttemptTimeout  time.Duration
	ingestQueueCapacity  int
	ingestWorkers        int
	dedupeMaxSize        int

	// State
	started   bool
	runCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTL:             5 * time.Minute,
		cacheMaxEntries:      1000,
		decimalPlaces:        4,
		minConfidence:        0.8,
		minSampleSize:        10,
		targetSampleSize:     30,
		confidenceLevel:      0.95,
		seasonalityThreshold: 0.5,
		retryMaxAttempts:     3,
		retryBaseDelay:       100 * time.Millisecond,
		retryMaxDelay:        5 * time.Second,
		breakerThreshold:     5,
		breakerResetTimeout:  30 * time.Second,
		fetchAttemptTimeout:  10 * time.Second,
		ingestQueueCapacity:  10000,
		ingestWorkers:        4,
		dedupeMaxSize:        50000,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting benchmark engine...")

	if s.gateway == nil {
		s.store = repository.NewTreapStore()
		s.gateway = gateway.NewMemoryGateway(gateway.WithStore(s.store))
		s.logger.Info(ctx, "using in-memory benchmark gateway")
	} else if mem, ok := s.gateway.(*gateway.MemoryGateway); ok {
		s.store = mem.Store()
	} else {
		// Remote gateways keep their own record set; ingested records land
		// in a local store for inspection and future serving.
		s.store = repository.NewTreapStore()
	}

	s.calculator = calc.NewDecimalCalculator(
		calc.WithPrecision(s.decimalPlaces),
		calc.WithCache(cache.New[string, decimal.Decimal](
			cache.WithName[string, decimal.Decimal]("calculations"),
			cache.WithTTL[string, decimal.Decimal](s.cacheTTL),
			cache.WithMaxEntries[string, decimal.Decimal](s.cacheMaxEntries),
		)),
	)

	s.comparator = compare.New(
		compare.WithMinConfidence(s.minConfidence),
		compare.WithMinSampleSize(s.minSampleSize),
		compare.WithTargetSampleSize(s.targetSampleSize),
		compare.WithConfidenceLevel(s.confidenceLevel),
		compare.WithSeasonalityThreshold(s.seasonalityThreshold),
		compare.WithCache(cache.New[string, model.BenchmarkComparison](
			cache.WithName[string, model.BenchmarkComparison]("comparisons"),
			cache.WithTTL[string, model.BenchmarkComparison](s.cacheTTL),
			cache.WithMaxEntries[string, model.BenchmarkComparison](s.cacheMaxEntries),
		)),
	)

	s.coord = coordinator.New(s.gateway,
		coordinator.WithMaxAttempts(s.retryMaxAttempts),
		coordinator.WithBaseDelay(s.retryBaseDelay),
		coordinator.WithMaxDelay(s.retryMaxDelay),
		coordinator.WithAttemptTimeout(s.fetchAttemptTimeout),
		coordinator.WithBreaker(coordinator.NewBreaker(
			coordinator.WithFailureThreshold(s.breakerThreshold),
			coordinator.WithResetTimeout(s.breakerResetTimeout),
		)),
	)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeMaxSize))
	s.ingestQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.ingestQueueCapacity))
	s.ingestPool = worker.NewPool(s.ingestWorkers, s.ingestQueue, validate.NewRecordValidator(), s.store)

	runCtx, cancel := context.WithCancel(context.Background())
	s.runCancel = cancel
	s.ingestPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "benchmark engine started",
		logger.Int("retry_max_attempts", s.retryMaxAttempts),
		logger.Int("breaker_threshold", s.breakerThreshold),
		logger.Any("cache_ttl", s.cacheTTL),
	)

	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	if err := s.ingestPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "ingest pool shutdown failed", logger.Error(err))
	}
	s.runCancel()

	s.started = false
	s.logger.Info(ctx, "benchmark engine stopped")
}

// CalculateMetric derives a metric value from raw inputs.
func (s *Service) CalculateMetric(ctx context.Context, metricType model.MetricType, inputs model.CalculationInput) (decimal.Decimal, error) {
	s.mu.RLock()
	calculator := s.calculator
	s.mu.RUnlock()

	return calculator.Calculate(ctx, metricType, inputs)
}

// CompareBenchmark fetches the benchmark population for filter through the
// coordinator and positions companyValue against it.
func (s *Service) CompareBenchmark(ctx context.Context, filter model.BenchmarkFilter, companyValue float64) (model.BenchmarkComparison, error) {
	s.mu.RLock()
	coord := s.coord
	comparator := s.comparator
	s.mu.RUnlock()

	records, err := coord.Fetch(ctx, filter)
	if err != nil {
		return model.BenchmarkComparison{}, err
	}

	return comparator.Compare(ctx, filter, companyValue, records)
}

// SeenAndRecord atomically checks record-ID idempotency for ingestion.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	s.mu.RLock()
	deduper := s.deduper
	s.mu.RUnlock()

	return deduper.SeenAndRecord(ctx, id)
}

// Unrecord rolls back an idempotency mark after a failed enqueue.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.mu.RLock()
	deduper := s.deduper
	s.mu.RUnlock()

	deduper.Unrecord(ctx, id)
}

// Size reports how many record IDs the idempotency set currently holds.
func (s *Service) Size() int64 {
	s.mu.RLock()
	deduper := s.deduper
	s.mu.RUnlock()

	if deduper == nil {
		return 0
	}
	return deduper.Size()
}

// Enqueue pushes a benchmark record onto the ingest queue for async
// validation and storage. Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, rec model.BenchmarkRecord) bool {
	s.mu.RLock()
	q := s.ingestQueue
	s.mu.RUnlock()

	return q.Enqueue(ctx, rec)
}

// SeedBenchmarks loads records into the in-memory gateway, when one is in
// use. It exists for local runs and fixtures.
func (s *Service) SeedBenchmarks(records []model.BenchmarkRecord) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mem, ok := s.gateway.(*gateway.MemoryGateway)
	if !ok {
		return false
	}
	mem.Seed(records)
	return true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"retry_max_attempts": s.retryMaxAttempts,
		"breaker_threshold":  s.breakerThreshold,
		"cache_ttl":          s.cacheTTL.String(),
	}

	if s.started {
		stats["breaker_state"] = s.coord.BreakerState().String()
		stats["gateway_endpoint"] = s.gateway.Endpoint()
		stats["stored_records"] = s.store.Count(context.Background())
		stats["ingest_queue_depth"] = s.ingestQueue.Len(context.Background())
		stats["deduper_size"] = s.deduper.Size()
	}

	return stats
}
