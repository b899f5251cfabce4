package coordinator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/njdifiore/benchmetrics/internal/adapters/gateway"
	coordinator "github.com/njdifiore/benchmetrics/internal/coordinator"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

func seedRecords(n int) []model.BenchmarkRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.BenchmarkRecord, n)
	for i := range records {
		records[i] = model.BenchmarkRecord{
			MetricID:        model.MetricNDR,
			RevenueRange:    model.Revenue1MTo5M,
			Value:           decimal.NewFromInt(int64(100 + i)),
			PeriodStart:     base.AddDate(0, 3*i, 0),
			PeriodEnd:       base.AddDate(0, 3*i+3, 0),
			ConfidenceScore: 0.9,
			DataQuality:     model.QualityHigh,
			SampleSize:      25,
		}
	}
	return records
}

func testFilter() model.BenchmarkFilter {
	return model.BenchmarkFilter{
		MetricID:     model.MetricNDR,
		RevenueRange: model.Revenue1MTo5M,
	}
}

func TestCoordinator_Fetch(t *testing.T) {
	Convey("Given a coordinator over a healthy gateway", t, func() {
		gw := gateway.NewMemoryGateway(gateway.WithRecords(seedRecords(5)))
		c := coordinator.New(gw, coordinator.WithBaseDelay(time.Millisecond))

		Convey("When fetching", func() {
			records, err := c.Fetch(context.Background(), testFilter())

			Convey("Then it should return the matching records in one call", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 5)
				So(gw.Calls(), ShouldEqual, 1)
			})
		})
	})
}

func TestCoordinator_SingleFlight(t *testing.T) {
	Convey("Given a slow gateway and many identical concurrent requests", t, func() {
		gw := gateway.NewMemoryGateway(
			gateway.WithRecords(seedRecords(3)),
			gateway.WithLatency(50*time.Millisecond),
		)
		c := coordinator.New(gw, coordinator.WithBaseDelay(time.Millisecond))

		Convey("When eight callers fetch the same filter simultaneously", func() {
			var wg sync.WaitGroup
			results := make([][]model.BenchmarkRecord, 8)
			errs := make([]error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = c.Fetch(context.Background(), testFilter())
				}(i)
			}
			wg.Wait()

			Convey("Then all callers should share one underlying fetch", func() {
				So(gw.Calls(), ShouldEqual, 1)
				for i := 0; i < 8; i++ {
					So(errs[i], ShouldBeNil)
					So(len(results[i]), ShouldEqual, 3)
				}
			})
		})
	})
}

func TestCoordinator_WaiterCancellation(t *testing.T) {
	Convey("Given a slow gateway", t, func() {
		gw := gateway.NewMemoryGateway(
			gateway.WithRecords(seedRecords(3)),
			gateway.WithLatency(200*time.Millisecond),
		)
		c := coordinator.New(gw, coordinator.WithBaseDelay(time.Millisecond))

		Convey("When a waiter's context is cancelled mid-fetch", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err := c.Fetch(ctx, testFilter())

			Convey("Then the waiter should receive its context error", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}

func TestCoordinator_Retry(t *testing.T) {
	Convey("Given a coordinator with a fast retry policy", t, func() {
		filter := testFilter()
		transient := &gateway.NetworkError{Endpoint: "memory://benchmarks", Err: errors.New("connection reset")}

		Convey("When the first attempt fails transiently and the second succeeds", func() {
			gw := gateway.NewMemoryGateway(
				gateway.WithRecords(seedRecords(2)),
				gateway.WithFailureScript([]error{transient, nil}),
			)
			c := coordinator.New(gw, coordinator.WithBaseDelay(time.Millisecond))

			records, err := c.Fetch(context.Background(), filter)

			Convey("Then the fetch should recover", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(gw.Calls(), ShouldEqual, 2)
			})
		})

		Convey("When every attempt fails transiently", func() {
			gw := gateway.NewMemoryGateway(
				gateway.WithFailureScript([]error{transient, transient, transient, transient}),
			)
			c := coordinator.New(gw,
				coordinator.WithMaxAttempts(3),
				coordinator.WithBaseDelay(time.Millisecond),
			)

			_, err := c.Fetch(context.Background(), filter)

			Convey("Then the attempt budget should be exhausted and annotated", func() {
				So(err, ShouldNotBeNil)
				So(gw.Calls(), ShouldEqual, 3)

				var fetchErr *coordinator.FetchError
				So(errors.As(err, &fetchErr), ShouldBeTrue)
				So(fetchErr.Attempts, ShouldEqual, 3)
				So(fetchErr.Endpoint, ShouldEqual, "memory://benchmarks")
				So(errors.Is(err, gateway.ErrNetwork), ShouldBeTrue)
			})
		})

		Convey("When the failure is not transient", func() {
			permanent := errors.New("malformed upstream payload")
			gw := gateway.NewMemoryGateway(
				gateway.WithFailureScript([]error{permanent}),
			)
			c := coordinator.New(gw,
				coordinator.WithMaxAttempts(3),
				coordinator.WithBaseDelay(time.Millisecond),
			)

			_, err := c.Fetch(context.Background(), filter)

			Convey("Then it should fail immediately without retrying", func() {
				So(errors.Is(err, permanent), ShouldBeTrue)
				So(gw.Calls(), ShouldEqual, 1)

				var fetchErr *coordinator.FetchError
				So(errors.As(err, &fetchErr), ShouldBeFalse)
			})
		})
	})
}

func TestCoordinator_BreakerIntegration(t *testing.T) {
	Convey("Given a coordinator whose breaker opens after one failure", t, func() {
		transient := &gateway.TimeoutError{Endpoint: "memory://benchmarks", Elapsed: time.Second}
		gw := gateway.NewMemoryGateway(
			gateway.WithRecords(seedRecords(2)),
			gateway.WithFailureScript([]error{transient}),
		)
		breaker := coordinator.NewBreaker(coordinator.WithFailureThreshold(1))
		c := coordinator.New(gw,
			coordinator.WithMaxAttempts(1),
			coordinator.WithBaseDelay(time.Millisecond),
			coordinator.WithBreaker(breaker),
		)
		ctx := context.Background()

		Convey("When the first fetch fails and opens the circuit", func() {
			_, err := c.Fetch(ctx, testFilter())
			So(err, ShouldNotBeNil)
			So(c.BreakerState(), ShouldEqual, coordinator.StateOpen)

			Convey("Then subsequent fetches should fail fast without touching the gateway", func() {
				_, err := c.Fetch(ctx, model.BenchmarkFilter{
					MetricID:     model.MetricMagicNumber,
					RevenueRange: model.Revenue50MPlus,
				})

				So(errors.Is(err, coordinator.ErrCircuitOpen), ShouldBeTrue)
				So(gw.Calls(), ShouldEqual, 1)

				var open *coordinator.CircuitOpenError
				So(errors.As(err, &open), ShouldBeTrue)
				So(open.RetryAfter, ShouldBeGreaterThan, 0)
			})
		})
	})
}
