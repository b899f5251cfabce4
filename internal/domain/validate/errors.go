package validate

import (
	"errors"
	"fmt"
)

// Sentinel kinds for validation errors.
var (
	ErrInvalidRecord = errors.New("invalid benchmark record")
)

// RecordError describes why a benchmark record was rejected.
type RecordError struct {
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid benchmark record: %s: %s", e.Field, e.Reason)
}

// Unwrap ties the typed error to the ErrInvalidRecord sentinel.
func (e *RecordError) Unwrap() error { return ErrInvalidRecord }
