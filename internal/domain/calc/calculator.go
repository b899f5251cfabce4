// Package calc derives regulated SaaS financial metrics from raw inputs
// using exact decimal arithmetic and bound validation.
package calc

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/adapters/cache"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// Calculator computes a derived metric from named decimal inputs.
type Calculator interface {
	// Calculate derives the metric value, honoring ctx for cancellation.
	// The result is exact-decimal, rounded half-up to the metric's precision,
	// and guaranteed to lie within the metric's documented bounds.
	Calculate(ctx context.Context, metricType model.MetricType, inputs model.CalculationInput) (decimal.Decimal, error)
}

// DecimalCalculator implements Calculator with shopspring/decimal arithmetic.
// It is pure aside from its result cache and safe for concurrent use.
type DecimalCalculator struct {
	precision int32
	cache     *cache.Cache[string, decimal.Decimal]
}

// NewDecimalCalculator creates a calculator with configuration options.
func NewDecimalCalculator(opts ...Option) *DecimalCalculator {
	c := &DecimalCalculator{
		precision: defaultPrecision,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New[string, decimal.Decimal](
			cache.WithName[string, decimal.Decimal]("calculations"),
		)
	}
	return c
}

// Calculate derives the requested metric. Identical (metricType, inputs)
// requests within the cache TTL return the cached decimal; the function is
// pure so this is safe.
func (c *DecimalCalculator) Calculate(ctx context.Context, metricType model.MetricType, inputs model.CalculationInput) (decimal.Decimal, error) {
	start := time.Now()

	def, ok := Definition(metricType)
	if !ok {
		return decimal.Zero, ErrUnknownMetric
	}

	if err := validateInputs(def, inputs); err != nil {
		metrics.RecordCalculationError(string(metricType), "invalid_input")
		return decimal.Zero, err
	}

	key := cacheKey(metricType, inputs)
	if v, hit := c.cache.Get(ctx, key); hit {
		return v, nil
	}

	raw, err := compute(metricType, inputs)
	if err != nil {
		metrics.RecordCalculationError(string(metricType), "invalid_input")
		return decimal.Zero, err
	}

	result := raw.Round(c.precision)

	// Bound check happens after rounding; the caller is told the computed
	// value, never handed a clamped one.
	if result.LessThan(def.Validation.Min) || result.GreaterThan(def.Validation.Max) {
		metrics.RecordCalculationError(string(metricType), "out_of_bounds")
		return decimal.Zero, &OutOfBoundsError{
			MetricType: metricType,
			Value:      result,
			Min:        def.Validation.Min,
			Max:        def.Validation.Max,
		}
	}

	c.cache.Set(ctx, key, result)
	metrics.RecordCalculation(string(metricType))
	metrics.RecordCalculationLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return result, nil
}

// validateInputs checks presence and non-negativity of every required input.
func validateInputs(def model.MetricDefinition, inputs model.CalculationInput) error {
	for _, field := range def.Validation.Required {
		v, ok := inputs[field]
		if !ok {
			return &InvalidInputError{Field: field, Reason: "missing required input"}
		}
		if v.IsNegative() {
			return &InvalidInputError{Field: field, Reason: "must not be negative"}
		}
	}
	return nil
}

// compute evaluates the metric formula. Denominator guards run before any
// division so the calculator never divides by zero or yields NaN/Inf.
func compute(metricType model.MetricType, in model.CalculationInput) (decimal.Decimal, error) {
	hundred := decimal.NewFromInt(100)

	switch metricType {
	case model.MetricNDR:
		startingARR := in[FieldStartingARR]
		if !startingARR.IsPositive() {
			return decimal.Zero, &InvalidInputError{Field: FieldStartingARR, Reason: "must be strictly positive"}
		}
		retained := startingARR.Add(in[FieldExpansions]).Sub(in[FieldContractions]).Sub(in[FieldChurn])
		return retained.Div(startingARR).Mul(hundred), nil

	case model.MetricMagicNumber:
		spend := in[FieldPrevQuarterSMSpend]
		if !spend.IsPositive() {
			return decimal.Zero, &InvalidInputError{Field: FieldPrevQuarterSMSpend, Reason: "must be strictly positive"}
		}
		return in[FieldNetNewARR].Div(spend), nil

	case model.MetricCACPayback:
		marginAdjusted := in[FieldARPA].Mul(in[FieldGrossMargin].Div(hundred))
		if !marginAdjusted.IsPositive() {
			return decimal.Zero, &InvalidInputError{Field: "arpa*grossMargin", Reason: "must be strictly positive"}
		}
		return in[FieldCAC].Div(marginAdjusted), nil

	case model.MetricPipelineCoverage:
		target := in[FieldRevenueTarget]
		if !target.IsPositive() {
			return decimal.Zero, &InvalidInputError{Field: FieldRevenueTarget, Reason: "must be strictly positive"}
		}
		return in[FieldPipelineValue].Div(target), nil
	}

	return decimal.Zero, ErrUnknownMetric
}

// cacheKey canonicalizes inputs into a deterministic key.
func cacheKey(metricType model.MetricType, inputs model.CalculationInput) string {
	fields := make([]string, 0, len(inputs))
	for name := range inputs {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(string(metricType))
	for _, name := range fields {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(inputs[name].String())
	}
	return b.String()
}
