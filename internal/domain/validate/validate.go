// Package validate defines the contract for admitting benchmark records
// into the store.
package validate

import (
	"github.com/njdifiore/benchmetrics/internal/domain/calc"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// knownQualities lists the accepted data quality tiers.
var knownQualities = map[model.DataQuality]bool{
	model.QualityHigh:         true,
	model.QualityMedium:       true,
	model.QualityLow:          true,
	model.QualityInsufficient: true,
}

// knownRanges lists the accepted revenue range buckets.
var knownRanges = map[model.RevenueRange]bool{
	model.Revenue1MTo5M:   true,
	model.Revenue5MTo10M:  true,
	model.Revenue10MTo50M: true,
	model.Revenue50MPlus:  true,
}

// RecordValidator admits benchmark records into the store. A record is
// admissible when its metric is known, its value sits inside that metric's
// bounds, and its quality metadata is internally consistent.
type RecordValidator struct {
	requireKnownRange bool
}

// NewRecordValidator creates a validator with configuration options.
func NewRecordValidator(opts ...Option) *RecordValidator {
	v := &RecordValidator{
		requireKnownRange: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateRecord returns nil when rec may be stored, or a *RecordError
// naming the offending field.
func (v *RecordValidator) ValidateRecord(rec model.BenchmarkRecord) error {
	if rec.ID == "" {
		return &RecordError{Field: "id", Reason: "missing record id"}
	}

	def, ok := calc.Definition(rec.MetricID)
	if !ok {
		return &RecordError{Field: "metric_id", Reason: "unknown metric type"}
	}
	if rec.Value.LessThan(def.Validation.Min) || rec.Value.GreaterThan(def.Validation.Max) {
		return &RecordError{Field: "value", Reason: "outside metric bounds"}
	}

	if v.requireKnownRange && !knownRanges[rec.RevenueRange] {
		return &RecordError{Field: "revenue_range", Reason: "unknown revenue range"}
	}
	if !knownQualities[rec.DataQuality] {
		return &RecordError{Field: "data_quality", Reason: "unknown quality tier"}
	}

	if rec.ConfidenceScore < 0 || rec.ConfidenceScore > 1 {
		return &RecordError{Field: "confidence_score", Reason: "must be within [0,1]"}
	}
	if rec.SampleSize < 1 {
		return &RecordError{Field: "sample_size", Reason: "must be at least 1"}
	}

	if rec.PeriodStart.IsZero() || rec.PeriodEnd.IsZero() {
		return &RecordError{Field: "period", Reason: "missing period bounds"}
	}
	if !rec.PeriodEnd.After(rec.PeriodStart) {
		return &RecordError{Field: "period", Reason: "period end must be after period start"}
	}

	return nil
}
