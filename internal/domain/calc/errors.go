package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

// Sentinel kinds for calculation errors. These allow errors.Is from callers;
// errors.As against the typed errors below exposes the payload.
var (
	ErrInvalidInput  = errors.New("invalid calculation input")
	ErrOutOfBounds   = errors.New("metric value out of bounds")
	ErrUnknownMetric = errors.New("unknown metric type")
)

// InvalidInputError reports a missing, negative or non-positive-denominator
// input, naming the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

// Unwrap ties the typed error to the ErrInvalidInput sentinel.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// OutOfBoundsError reports a computed value outside the metric's documented
// range. The computed value is carried to the caller, never clamped.
type OutOfBoundsError struct {
	MetricType model.MetricType
	Value      decimal.Decimal
	Min        decimal.Decimal
	Max        decimal.Decimal
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s value %s outside allowed range [%s, %s]",
		e.MetricType, e.Value, e.Min, e.Max)
}

// Unwrap ties the typed error to the ErrOutOfBounds sentinel.
func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }
