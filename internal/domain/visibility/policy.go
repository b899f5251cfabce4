// Package visibility maps caller roles to the comparison fields they may
// see. The policy is a pure function applied at serialization boundaries;
// it never mutates the comparison it filters.
package visibility

import (
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Role identifies the caller's access level.
type Role string

// Known roles.
const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

// Comparison field names used in serialized output.
const (
	FieldMetricID        = "metric_id"
	FieldCompanyValue    = "company_value"
	FieldBenchmarkValue  = "benchmark_value"
	FieldVariancePct     = "variance_pct"
	FieldPercentileRank  = "percentile_rank"
	FieldTrend           = "trend_analysis"
	FieldHistory         = "historical_context"
	FieldConfidenceScore = "confidence_score"
	FieldSampleSize      = "sample_size"
	FieldDataQuality     = "data_quality"
)

// rolePolicy lists the fields each role may see. Admins see everything,
// analysts everything but the raw historical series, viewers only the
// headline comparison.
var rolePolicy = map[Role][]string{
	RoleAdmin: {
		FieldMetricID, FieldCompanyValue, FieldBenchmarkValue, FieldVariancePct,
		FieldPercentileRank, FieldTrend, FieldHistory, FieldConfidenceScore,
		FieldSampleSize, FieldDataQuality,
	},
	RoleAnalyst: {
		FieldMetricID, FieldCompanyValue, FieldBenchmarkValue, FieldVariancePct,
		FieldPercentileRank, FieldTrend, FieldConfidenceScore,
		FieldSampleSize, FieldDataQuality,
	},
	RoleViewer: {
		FieldMetricID, FieldCompanyValue, FieldBenchmarkValue,
		FieldVariancePct, FieldPercentileRank,
	},
}

// Allowed returns the set of comparison fields visible to role. Unknown
// roles fall back to the viewer policy.
func Allowed(role Role) map[string]bool {
	fields, ok := rolePolicy[role]
	if !ok {
		fields = rolePolicy[RoleViewer]
	}
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}

// Apply produces the serializable view of cmp for role. The input is read
// only; omitted fields are simply absent from the result.
func Apply(role Role, cmp model.BenchmarkComparison) map[string]any {
	allowed := Allowed(role)
	full := map[string]any{
		FieldMetricID:        cmp.MetricID,
		FieldCompanyValue:    cmp.CompanyValue,
		FieldBenchmarkValue:  cmp.BenchmarkValue,
		FieldVariancePct:     cmp.VariancePct,
		FieldPercentileRank:  cmp.PercentileRank,
		FieldTrend:           cmp.Trend,
		FieldHistory:         cmp.History,
		FieldConfidenceScore: cmp.ConfidenceScore,
		FieldSampleSize:      cmp.SampleSize,
		FieldDataQuality:     cmp.Quality,
	}

	view := make(map[string]any, len(allowed))
	for name, value := range full {
		if allowed[name] {
			view[name] = value
		}
	}
	return view
}
