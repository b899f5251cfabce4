package coordinator_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	coordinator "github.com/njdifiore/benchmetrics/internal/coordinator"
)

// testClock is a mutex-guarded manual time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1700000000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	Convey("Given a closed breaker with a threshold of three", t, func() {
		b := coordinator.NewBreaker(coordinator.WithFailureThreshold(3))

		Convey("When failures stay below the threshold", func() {
			b.ReportFailure()
			b.ReportFailure()

			Convey("Then the circuit should stay closed", func() {
				So(b.CurrentState(), ShouldEqual, coordinator.StateClosed)
				So(b.Allow(), ShouldBeNil)
			})
		})

		Convey("When consecutive failures reach the threshold", func() {
			b.ReportFailure()
			b.ReportFailure()
			b.ReportFailure()

			Convey("Then the circuit should open", func() {
				So(b.CurrentState(), ShouldEqual, coordinator.StateOpen)
			})

			Convey("And requests should fail fast with a retry hint", func() {
				err := b.Allow()
				So(err, ShouldNotBeNil)
				So(errors.Is(err, coordinator.ErrCircuitOpen), ShouldBeTrue)

				var open *coordinator.CircuitOpenError
				So(errors.As(err, &open), ShouldBeTrue)
				So(open.RetryAfter, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When a success lands between failures", func() {
			b.ReportFailure()
			b.ReportFailure()
			b.ReportSuccess()
			b.ReportFailure()
			b.ReportFailure()

			Convey("Then the consecutive counter should have reset", func() {
				So(b.CurrentState(), ShouldEqual, coordinator.StateClosed)
			})
		})
	})
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	Convey("Given an open breaker with an injected clock", t, func() {
		clock := newTestClock()
		b := coordinator.NewBreaker(
			coordinator.WithFailureThreshold(1),
			coordinator.WithResetTimeout(30*time.Second),
			coordinator.WithBreakerClock(clock.Now),
		)
		b.ReportFailure()
		So(b.CurrentState(), ShouldEqual, coordinator.StateOpen)

		Convey("When the reset timeout has not elapsed", func() {
			clock.Advance(29 * time.Second)

			Convey("Then requests should still fail fast", func() {
				err := b.Allow()
				So(errors.Is(err, coordinator.ErrCircuitOpen), ShouldBeTrue)
			})
		})

		Convey("When the reset timeout elapses", func() {
			clock.Advance(30 * time.Second)

			Convey("Then exactly one trial request should be admitted", func() {
				So(b.Allow(), ShouldBeNil)
				So(b.CurrentState(), ShouldEqual, coordinator.StateHalfOpen)

				err := b.Allow()
				So(errors.Is(err, coordinator.ErrCircuitOpen), ShouldBeTrue)
			})

			Convey("And a successful trial should close the circuit", func() {
				So(b.Allow(), ShouldBeNil)
				b.ReportSuccess()
				So(b.CurrentState(), ShouldEqual, coordinator.StateClosed)
				So(b.Allow(), ShouldBeNil)
			})

			Convey("And a failed trial should reopen the circuit", func() {
				So(b.Allow(), ShouldBeNil)
				b.ReportFailure()
				So(b.CurrentState(), ShouldEqual, coordinator.StateOpen)

				err := b.Allow()
				So(errors.Is(err, coordinator.ErrCircuitOpen), ShouldBeTrue)
			})

			Convey("And the next trial after a failed one should wait a full timeout", func() {
				So(b.Allow(), ShouldBeNil)
				b.ReportFailure()

				clock.Advance(29 * time.Second)
				So(errors.Is(b.Allow(), coordinator.ErrCircuitOpen), ShouldBeTrue)

				clock.Advance(time.Second)
				So(b.Allow(), ShouldBeNil)
			})
		})
	})
}

func TestBreaker_States(t *testing.T) {
	Convey("Given the breaker states", t, func() {
		Convey("Then they should render lowercase names", func() {
			So(coordinator.StateClosed.String(), ShouldEqual, "closed")
			So(coordinator.StateHalfOpen.String(), ShouldEqual, "half_open")
			So(coordinator.StateOpen.String(), ShouldEqual, "open")
		})
	})
}
