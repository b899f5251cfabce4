package service

import (
	"time"

	"github.com/njdifiore/benchmetrics/internal/adapters/gateway"
	"github.com/njdifiore/benchmetrics/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGateway injects the benchmark data gateway.
func WithGateway(gw gateway.Gateway) Option {
	return func(s *Service) {
		if gw != nil {
			s.gateway = gw
		}
	}
}

// WithCacheTTL sets the TTL shared by the calculation and comparison caches.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheMaxEntries bounds each cache before FIFO eviction.
func WithCacheMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheMaxEntries = n
		}
	}
}

// WithDecimalPlaces sets the metric rounding precision.
func WithDecimalPlaces(places int) Option {
	return func(s *Service) {
		if places >= 0 {
			s.decimalPlaces = int32(places)
		}
	}
}

// WithFilterThresholds sets the benchmark quality filter parameters.
func WithFilterThresholds(minConfidence float64, minSampleSize int) Option {
	return func(s *Service) {
		if minConfidence >= 0 && minConfidence <= 1 {
			s.minConfidence = minConfidence
		}
		if minSampleSize > 0 {
			s.minSampleSize = minSampleSize
		}
	}
}

// WithTargetSampleSize sets the confidence-score saturation point.
func WithTargetSampleSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.targetSampleSize = n
		}
	}
}

// WithConfidenceLevel sets the comparison confidence interval level.
func WithConfidenceLevel(level float64) Option {
	return func(s *Service) {
		if level > 0 && level < 1 {
			s.confidenceLevel = level
		}
	}
}

// WithSeasonalityThreshold sets the seasonality detection threshold.
func WithSeasonalityThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.seasonalityThreshold = t
		}
	}
}

// WithRetryPolicy sets the coordinator retry parameters.
func WithRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.retryMaxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			s.retryBaseDelay = baseDelay
		}
		if maxDelay > 0 {
			s.retryMaxDelay = maxDelay
		}
	}
}

// WithBreakerPolicy sets the circuit breaker parameters.
func WithBreakerPolicy(failureThreshold int, resetTimeout time.Duration) Option {
	return func(s *Service) {
		if failureThreshold > 0 {
			s.breakerThreshold = failureThreshold
		}
		if resetTimeout > 0 {
			s.breakerResetTimeout = resetTimeout
		}
	}
}

// WithFetchAttemptTimeout sets the per-attempt gateway deadline.
func WithFetchAttemptTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchAttemptTimeout = d
		}
	}
}

// WithIngestQueueCapacity bounds the async ingest queue.
func WithIngestQueueCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ingestQueueCapacity = n
		}
	}
}

// WithIngestWorkers sets the ingest worker count.
func WithIngestWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ingestWorkers = n
		}
	}
}

// WithDedupeMaxSize bounds the ingest idempotency set.
func WithDedupeMaxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeMaxSize = n
		}
	}
}
