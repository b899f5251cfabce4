// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MetricType identifies one of the derived SaaS metrics.
type MetricType string

// Supported metric types.
const (
	MetricNDR              MetricType = "net_dollar_retention"
	MetricMagicNumber      MetricType = "magic_number"
	MetricCACPayback       MetricType = "cac_payback"
	MetricPipelineCoverage MetricType = "pipeline_coverage"
)

// DataQuality is the upstream-assigned confidence tier of a benchmark record.
type DataQuality string

// Data quality tiers, ordered best to worst.
const (
	QualityHigh         DataQuality = "HIGH"
	QualityMedium       DataQuality = "MEDIUM"
	QualityLow          DataQuality = "LOW"
	QualityInsufficient DataQuality = "INSUFFICIENT"
)

// qualityRank orders tiers so the worst tier in a set can be reported.
var qualityRank = map[DataQuality]int{
	QualityHigh:         0,
	QualityMedium:       1,
	QualityLow:          2,
	QualityInsufficient: 3,
}

// Worse reports whether q is a strictly worse tier than other.
func (q DataQuality) Worse(other DataQuality) bool {
	return qualityRank[q] > qualityRank[other]
}

// RevenueRange buckets companies by annual revenue.
type RevenueRange string

// Revenue range buckets.
const (
	Revenue1MTo5M   RevenueRange = "1M-5M"
	Revenue5MTo10M  RevenueRange = "5M-10M"
	Revenue10MTo50M RevenueRange = "10M-50M"
	Revenue50MPlus  RevenueRange = "50M+"
)

// ValidationRules bound a metric's computed value and name its required inputs.
type ValidationRules struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Precision int32    // decimal places for rounding
	Required  []string // input field names that must be present
}

// MetricDefinition is immutable reference data describing a derived metric.
type MetricDefinition struct {
	ID         MetricType
	Name       string
	Category   string
	DataType   string
	Validation ValidationRules
}

// CalculationInput maps named decimal inputs for a metric calculation.
type CalculationInput map[string]decimal.Decimal

// BenchmarkRecord is a single benchmark observation produced upstream.
// Read-only to this engine.
type BenchmarkRecord struct {
	ID              string          `json:"id"`
	MetricID        MetricType      `json:"metric_id"`
	SourceID        string          `json:"source_id"`
	RevenueRange    RevenueRange    `json:"revenue_range"`
	Value           decimal.Decimal `json:"value"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	ConfidenceScore float64         `json:"confidence_score"` // [0,1]
	DataQuality     DataQuality     `json:"data_quality"`
	SampleSize      int             `json:"sample_size"`
}

// BenchmarkFilter selects the benchmark population to compare against.
type BenchmarkFilter struct {
	MetricID     MetricType
	RevenueRange RevenueRange
	PeriodStart  time.Time
	PeriodEnd    time.Time
}

// Key returns a deterministic string used for caching and request coalescing.
func (f BenchmarkFilter) Key() string {
	return fmt.Sprintf("%s|%s|%d|%d",
		f.MetricID, f.RevenueRange, f.PeriodStart.UnixNano(), f.PeriodEnd.UnixNano())
}

// TrendDirection classifies the movement of a benchmark series over time.
type TrendDirection string

// Trend classifications.
const (
	TrendIncreasing TrendDirection = "INCREASING"
	TrendDecreasing TrendDirection = "DECREASING"
	TrendStable     TrendDirection = "STABLE"
	TrendVolatile   TrendDirection = "VOLATILE"
)

// Seasonality summarizes the autocorrelation-based seasonality check.
type Seasonality struct {
	Strength     float64 `json:"strength"`
	LikelyPeriod int     `json:"likely_period"`
	Detected     bool    `json:"detected"`
}

// ConfidenceInterval is a two-sided interval around the benchmark mean.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// TrendAnalysis describes how the filtered benchmark series moves over time.
type TrendAnalysis struct {
	Direction          TrendDirection      `json:"direction"`
	GrowthRatePct      float64             `json:"growth_rate_pct"`
	Seasonality        Seasonality         `json:"seasonality"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval,omitempty"`
}

// HistoricalContext carries the descriptive statistics of the benchmark set.
type HistoricalContext struct {
	PreviousPeriods []float64 `json:"previous_periods"` // values ordered by period start
	Average         float64   `json:"average"`
	Median          float64   `json:"median"`
	StdDev          float64   `json:"std_dev"` // population standard deviation
}

// QualityPair reports the data quality on both sides of a comparison.
type QualityPair struct {
	Company   DataQuality `json:"company"`
	Benchmark DataQuality `json:"benchmark"` // worst tier present in the filtered set
}

// BenchmarkComparison is the derived, ephemeral result of comparing a company
// value against a filtered benchmark population.
type BenchmarkComparison struct {
	MetricID        MetricType        `json:"metric_id"`
	CompanyValue    float64           `json:"company_value"`
	BenchmarkValue  float64           `json:"benchmark_value"` // arithmetic mean
	VariancePct     float64           `json:"variance_pct"`
	PercentileRank  float64           `json:"percentile_rank"` // [0,100], 2 decimals
	Trend           TrendAnalysis     `json:"trend_analysis"`
	History         HistoricalContext `json:"historical_context"`
	ConfidenceScore float64           `json:"confidence_score"` // [0,1]
	SampleSize      int               `json:"sample_size"`
	Quality         QualityPair       `json:"data_quality"`
}
