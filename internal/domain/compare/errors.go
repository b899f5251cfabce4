package compare

import (
	"errors"
	"fmt"
)

// Sentinel kinds for comparison errors.
var (
	ErrInsufficientData = errors.New("insufficient benchmark data")
)

// InsufficientDataError reports that the quality filter left no usable
// benchmark records. It is a data-shape failure, never retried.
type InsufficientDataError struct {
	Supplied int // records supplied before filtering
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no benchmark records passed the quality filter (%d supplied)", e.Supplied)
}

// Unwrap ties the typed error to the ErrInsufficientData sentinel.
func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }
