// Package compare statistically positions a company value against a
// quality-filtered benchmark population.
package compare

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/njdifiore/benchmetrics/internal/adapters/cache"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// Default comparator configuration constants.
const (
	defaultMinConfidence        = 0.8
	defaultMinSampleSize        = 10
	defaultTargetSampleSize     = 30
	defaultConfidenceLevel      = 0.95
	defaultSeasonalityThreshold = 0.5
)

// Comparator filters a benchmark population and produces a
// model.BenchmarkComparison. It is stateless aside from its result cache and
// safe for concurrent use.
type Comparator struct {
	minConfidence        float64
	minSampleSize        int
	targetSampleSize     int
	confidenceLevel      float64
	seasonalityThreshold float64
	cache                *cache.Cache[string, model.BenchmarkComparison]
}

// New creates a Comparator with configuration options.
func New(opts ...Option) *Comparator {
	c := &Comparator{
		minConfidence:        defaultMinConfidence,
		minSampleSize:        defaultMinSampleSize,
		targetSampleSize:     defaultTargetSampleSize,
		confidenceLevel:      defaultConfidenceLevel,
		seasonalityThreshold: defaultSeasonalityThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New[string, model.BenchmarkComparison](
			cache.WithName[string, model.BenchmarkComparison]("comparisons"),
		)
	}
	return c
}

// Compare positions companyValue against records fetched for filter.
// Records failing the quality filter are dropped; an empty remainder yields
// InsufficientDataError. Results are cached by (filter key, company value).
func (c *Comparator) Compare(ctx context.Context, filter model.BenchmarkFilter, companyValue float64, records []model.BenchmarkRecord) (model.BenchmarkComparison, error) {
	start := time.Now()

	key := fmt.Sprintf("%s|%.6f", filter.Key(), companyValue)
	if cached, hit := c.cache.Get(ctx, key); hit {
		return cached, nil
	}

	kept := c.filterRecords(records)
	if len(kept) == 0 {
		metrics.RecordComparisonError("insufficient_data")
		return model.BenchmarkComparison{}, &InsufficientDataError{Supplied: len(records)}
	}
	metrics.RecordFilteredSampleSize(len(kept))

	// Order by period start once; both the historical series and the trend
	// analysis depend on it.
	sort.Slice(kept, func(i, j int) bool { return kept[i].PeriodStart.Before(kept[j].PeriodStart) })

	series := make([]float64, len(kept))
	for i, r := range kept {
		series[i] = r.Value.InexactFloat64()
	}

	average, _ := stats.Mean(series)
	stdDev, _ := stats.StdDevP(series) // population, divide by n

	ascending := append([]float64(nil), series...)
	sort.Float64s(ascending)
	// Upper-middle element on even n; documented convention, not the
	// interpolated median.
	median := ascending[len(ascending)/2]

	variancePct := 0.0
	if average != 0 {
		variancePct = (companyValue - average) / average * 100
	}

	trend := c.analyzeTrend(series, average, stdDev, len(kept))

	comparison := model.BenchmarkComparison{
		MetricID:       filter.MetricID,
		CompanyValue:   companyValue,
		BenchmarkValue: average,
		VariancePct:    variancePct,
		PercentileRank: percentileRank(ascending, companyValue),
		Trend:          trend,
		History: model.HistoricalContext{
			PreviousPeriods: series,
			Average:         average,
			Median:          median,
			StdDev:          stdDev,
		},
		ConfidenceScore: c.confidenceScore(kept),
		SampleSize:      len(kept),
		Quality: model.QualityPair{
			Company:   model.QualityHigh, // self-reported figures are taken at face value
			Benchmark: worstQuality(kept),
		},
	}

	c.cache.Set(ctx, key, comparison)
	metrics.RecordComparison()
	metrics.RecordComparisonLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return comparison, nil
}

// filterRecords drops records below the confidence threshold, below the
// minimum sample size, or marked INSUFFICIENT.
func (c *Comparator) filterRecords(records []model.BenchmarkRecord) []model.BenchmarkRecord {
	kept := make([]model.BenchmarkRecord, 0, len(records))
	for _, r := range records {
		if r.ConfidenceScore < c.minConfidence {
			continue
		}
		if r.SampleSize < c.minSampleSize {
			continue
		}
		if r.DataQuality == model.QualityInsufficient {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// percentileRank computes the strictly-less-than percentile rank of value in
// the ascending-sorted population, rounded half-up to 2 decimals. Ties are
// excluded from the count.
func percentileRank(ascending []float64, value float64) float64 {
	below := sort.SearchFloat64s(ascending, value)
	rank := float64(below) / float64(len(ascending)) * 100
	return math.Round(rank*100) / 100
}

// confidenceScore scales the average record confidence by how close the
// sample size is to the target.
func (c *Comparator) confidenceScore(kept []model.BenchmarkRecord) float64 {
	total := 0.0
	for _, r := range kept {
		total += r.ConfidenceScore
	}
	avgConfidence := total / float64(len(kept))

	sizeFactor := float64(len(kept)) / float64(c.targetSampleSize)
	if sizeFactor > 1 {
		sizeFactor = 1
	}
	return sizeFactor * avgConfidence
}

// worstQuality returns the worst quality tier present in the set.
func worstQuality(kept []model.BenchmarkRecord) model.DataQuality {
	worst := kept[0].DataQuality
	for _, r := range kept[1:] {
		if r.DataQuality.Worse(worst) {
			worst = r.DataQuality
		}
	}
	return worst
}

// zScore returns the two-sided normal quantile for the configured level.
func (c *Comparator) zScore() float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return normal.Quantile(0.5 + c.confidenceLevel/2)
}
