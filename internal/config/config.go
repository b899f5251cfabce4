// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// CacheTTL bounds how long calculation/comparison results stay cached.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// CacheMaxEntries bounds each cache before FIFO eviction kicks in.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// DecimalPlaces sets the rounding precision for derived metrics.
	DecimalPlaces int `koanf:"decimal_places"`

	// MinConfidenceScore drops benchmark records below this confidence.
	MinConfidenceScore float64 `koanf:"min_confidence_score"`

	// MinSampleSize drops benchmark records with smaller samples.
	MinSampleSize int `koanf:"min_sample_size"`

	// TargetSampleSize is the population size at which the comparison
	// confidence score stops being penalized.
	TargetSampleSize int `koanf:"target_sample_size"`

	// ConfidenceLevel sets the two-sided confidence interval level.
	ConfidenceLevel float64 `koanf:"confidence_level"`

	// SeasonalityThreshold is the autocorrelation strength above which
	// seasonality is reported.
	SeasonalityThreshold float64 `koanf:"seasonality_threshold"`

	// RetryMaxAttempts bounds gateway fetch attempts, the first included.
	RetryMaxAttempts int `koanf:"retry_max_attempts"`

	// RetryBaseDelay is the first backoff delay.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration `koanf:"retry_max_delay"`

	// BreakerFailureThreshold opens the circuit after this many
	// consecutive failures.
	BreakerFailureThreshold int `koanf:"breaker_failure_threshold"`

	// BreakerResetTimeout keeps the circuit open before one trial call.
	BreakerResetTimeout time.Duration `koanf:"breaker_reset_timeout"`

	// FetchAttemptTimeout is the per-attempt gateway deadline.
	FetchAttemptTimeout time.Duration `koanf:"fetch_attempt_timeout"`

	// IngestQueueCapacity bounds the async record ingest queue.
	IngestQueueCapacity int `koanf:"ingest_queue_capacity"`

	// IngestWorkers sets the ingest worker count.
	IngestWorkers int `koanf:"ingest_workers"`

	// DedupeMaxSize bounds the ingest idempotency set before FIFO eviction.
	DedupeMaxSize int `koanf:"dedupe_max_size"`
}

// New creates a Config populated with documented defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9090",
		CacheTTL:                5 * time.Minute,
		CacheMaxEntries:         1000,
		DecimalPlaces:           4,
		MinConfidenceScore:      0.8,
		MinSampleSize:           10,
		TargetSampleSize:        30,
		ConfidenceLevel:         0.95,
		SeasonalityThreshold:    0.5,
		RetryMaxAttempts:        3,
		RetryBaseDelay:          100 * time.Millisecond,
		RetryMaxDelay:           5 * time.Second,
		BreakerFailureThreshold: 5,
		BreakerResetTimeout:     30 * time.Second,
		FetchAttemptTimeout:     10 * time.Second,
		IngestQueueCapacity:     10000,
		IngestWorkers:           4,
		DedupeMaxSize:           50000,
	}
}
