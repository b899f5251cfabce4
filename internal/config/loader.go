package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BENCHMETRICS_CONFIG is set
//  3. env (prefix BENCHMETRICS_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("BENCHMETRICS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: BENCHMETRICS_ADDR, BENCHMETRICS_CACHE_TTL, ...
	// Map env keys like BENCHMETRICS_CACHE_TTL -> cache_ttl (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BENCHMETRICS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "benchmetrics_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("%w: cache_ttl must be positive", ErrInvalidConfig)
	case c.CacheMaxEntries <= 0:
		return fmt.Errorf("%w: cache_max_entries must be positive", ErrInvalidConfig)
	case c.MinConfidenceScore < 0 || c.MinConfidenceScore > 1:
		return fmt.Errorf("%w: min_confidence_score must be in [0,1]", ErrInvalidConfig)
	case c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1:
		return fmt.Errorf("%w: confidence_level must be in (0,1)", ErrInvalidConfig)
	case c.RetryMaxAttempts <= 0:
		return fmt.Errorf("%w: retry_max_attempts must be positive", ErrInvalidConfig)
	case c.BreakerFailureThreshold <= 0:
		return fmt.Errorf("%w: breaker_failure_threshold must be positive", ErrInvalidConfig)
	case c.IngestQueueCapacity <= 0:
		return fmt.Errorf("%w: ingest_queue_capacity must be positive", ErrInvalidConfig)
	case c.IngestWorkers <= 0:
		return fmt.Errorf("%w: ingest_workers must be positive", ErrInvalidConfig)
	}
	return nil
}
