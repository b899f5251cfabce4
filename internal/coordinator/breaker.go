package coordinator

import (
	"sync"
	"time"

	"github.com/njdifiore/benchmetrics/pkg/metrics"
)

// State is a circuit breaker state.
type State int

// Breaker states.
const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker is an explicit circuit breaker state machine guarding the gateway.
//
// Transitions:
//
//	CLOSED    -> OPEN      when consecutive failures reach the threshold
//	OPEN      -> HALF_OPEN after the reset timeout, admitting one trial
//	HALF_OPEN -> CLOSED    on trial success (failure counter reset)
//	HALF_OPEN -> OPEN      on trial failure
type Breaker struct {
	mu sync.Mutex

	state            State
	failures         int // consecutive failures while closed
	openedAt         time.Time
	trialInFlight    bool
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time
}

// BreakerOption applies a configuration option to the Breaker.
type BreakerOption func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithResetTimeout sets how long the circuit stays open before a trial.
func WithResetTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.resetTimeout = d
		}
	}
}

// WithBreakerClock injects the time source, used by tests.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// Default breaker configuration constants.
const (
	defaultFailureThreshold = 5
	defaultResetTimeout     = 30 * time.Second
)

// NewBreaker creates a closed Breaker with configuration options.
func NewBreaker(opts ...BreakerOption) *Breaker {
	b := &Breaker{
		state:            StateClosed,
		failureThreshold: defaultFailureThreshold,
		resetTimeout:     defaultResetTimeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a request may proceed. While open it fails with
// CircuitOpenError until the reset timeout elapses, at which point exactly
// one caller is admitted as the half-open trial; concurrent callers keep
// failing until that trial settles.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil

	case StateOpen:
		elapsed := b.now().Sub(b.openedAt)
		if elapsed < b.resetTimeout {
			metrics.RecordBreakerShortstop()
			return &CircuitOpenError{RetryAfter: b.resetTimeout - elapsed}
		}
		b.transition(StateHalfOpen)
		b.trialInFlight = true
		return nil

	case StateHalfOpen:
		if b.trialInFlight {
			metrics.RecordBreakerShortstop()
			return &CircuitOpenError{RetryAfter: 0}
		}
		b.trialInFlight = true
		return nil
	}
	return nil
}

// ReportSuccess records a successful request outcome.
func (b *Breaker) ReportSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateHalfOpen {
		b.trialInFlight = false
		b.transition(StateClosed)
	}
}

// ReportFailure records a failed request outcome.
func (b *Breaker) ReportFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.trialInFlight = false
		b.openedAt = b.now()
		b.transition(StateOpen)

	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	case StateOpen:
		// Late failure from a request admitted before opening; nothing to do.
	}
}

// CurrentState returns the breaker state, advancing OPEN to the trial window
// check only via Allow.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transition moves to the target state and updates instrumentation.
// Must be called with b.mu held.
func (b *Breaker) transition(to State) {
	b.state = to
	metrics.RecordBreakerTransition(to.String())
	metrics.UpdateBreakerState(gaugeValue(to))
}

// gaugeValue maps a state onto the exported gauge encoding.
func gaugeValue(s State) int {
	switch s {
	case StateHalfOpen:
		return 1
	case StateOpen:
		return 2
	default:
		return 0
	}
}
