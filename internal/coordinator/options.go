package coordinator

import "time"

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithMaxAttempts bounds the retry budget, initial attempt included.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first retry delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithMaxDelay caps the retry delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithBackoffFactor sets the exponential growth factor.
func WithBackoffFactor(f float64) Option {
	return func(c *Coordinator) {
		if f > 1 {
			c.backoffFactor = f
		}
	}
}

// WithAttemptTimeout sets the per-attempt deadline, independent of the
// outer retry loop.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithBreaker injects a pre-configured circuit breaker.
func WithBreaker(b *Breaker) Option {
	return func(c *Coordinator) {
		if b != nil {
			c.breaker = b
		}
	}
}
