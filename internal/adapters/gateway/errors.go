package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for gateway errors.
var (
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("timeout")
)

// NetworkError reports a transient transport failure reaching the upstream.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error reaching %s: %v", e.Endpoint, e.Err)
}

// Unwrap ties the typed error to the ErrNetwork sentinel.
func (e *NetworkError) Unwrap() error { return ErrNetwork }

// TimeoutError reports an attempt that exceeded its deadline.
type TimeoutError struct {
	Endpoint string
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s reaching %s", e.Elapsed, e.Endpoint)
}

// Unwrap ties the typed error to the ErrTimeout sentinel.
func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// IsTransient reports whether err is a retryable gateway failure. Context
// deadline expiry on an attempt counts as a timeout.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
