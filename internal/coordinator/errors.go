package coordinator

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for coordinator errors.
var (
	ErrCircuitOpen = errors.New("circuit open")
)

// CircuitOpenError is returned immediately while the breaker is open. It is
// never retried and the gateway is never invoked.
type CircuitOpenError struct {
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open, retry after %s", e.RetryAfter)
}

// Unwrap ties the typed error to the ErrCircuitOpen sentinel.
func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }

// FetchError annotates a fetch that exhausted its attempt budget with the
// attempt count and target endpoint. The last underlying error is wrapped.
type FetchError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

// Unwrap exposes the last underlying error.
func (e *FetchError) Unwrap() error { return e.Err }
