package compare

import (
	"github.com/njdifiore/benchmetrics/internal/adapters/cache"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Option applies a configuration option to the Comparator.
type Option func(*Comparator)

// WithMinConfidence sets the minimum record confidence score kept by the filter.
func WithMinConfidence(score float64) Option {
	return func(c *Comparator) {
		if score >= 0 && score <= 1 {
			c.minConfidence = score
		}
	}
}

// WithMinSampleSize sets the minimum per-record sample size kept by the filter.
func WithMinSampleSize(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.minSampleSize = n
		}
	}
}

// WithTargetSampleSize sets the sample size at which the confidence score
// stops being penalized for small populations.
func WithTargetSampleSize(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.targetSampleSize = n
		}
	}
}

// WithConfidenceLevel sets the two-sided confidence interval level.
func WithConfidenceLevel(level float64) Option {
	return func(c *Comparator) {
		if level > 0 && level < 1 {
			c.confidenceLevel = level
		}
	}
}

// WithSeasonalityThreshold sets the autocorrelation strength above which
// seasonality is reported as detected.
func WithSeasonalityThreshold(t float64) Option {
	return func(c *Comparator) {
		if t > 0 {
			c.seasonalityThreshold = t
		}
	}
}

// WithCache injects the comparison result cache.
func WithCache(cc *cache.Cache[string, model.BenchmarkComparison]) Option {
	return func(c *Comparator) {
		if cc != nil {
			c.cache = cc
		}
	}
}
