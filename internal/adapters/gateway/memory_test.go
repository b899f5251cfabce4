package gateway_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	gateway "github.com/njdifiore/benchmetrics/internal/adapters/gateway"
	repository "github.com/njdifiore/benchmetrics/internal/adapters/repository"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

func fixtureRecords() []model.BenchmarkRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.BenchmarkRecord{
		{
			ID:           "ndr-1",
			MetricID:     model.MetricNDR,
			RevenueRange: model.Revenue1MTo5M,
			Value:        decimal.NewFromInt(105),
			PeriodStart:  base,
			PeriodEnd:    base.AddDate(0, 3, 0),
		},
		{
			// No ID; Seed must assign one.
			MetricID:     model.MetricNDR,
			RevenueRange: model.Revenue50MPlus,
			Value:        decimal.NewFromInt(120),
			PeriodStart:  base.AddDate(0, 3, 0),
			PeriodEnd:    base.AddDate(0, 6, 0),
		},
		{
			ID:           "magic-1",
			MetricID:     model.MetricMagicNumber,
			RevenueRange: model.Revenue1MTo5M,
			Value:        decimal.NewFromFloat(0.8),
			PeriodStart:  base,
			PeriodEnd:    base.AddDate(0, 3, 0),
		},
	}
}

func TestMemoryGateway_Fetch(t *testing.T) {
	Convey("Given a seeded memory gateway", t, func() {
		gw := gateway.NewMemoryGateway(gateway.WithRecords(fixtureRecords()))
		ctx := context.Background()

		Convey("When fetching by metric", func() {
			records, err := gw.Fetch(ctx, model.BenchmarkFilter{MetricID: model.MetricNDR})

			Convey("Then only that metric's records should return", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				for _, r := range records {
					So(r.MetricID, ShouldEqual, model.MetricNDR)
					So(r.ID, ShouldNotBeEmpty)
				}
			})

			Convey("And the call count should advance", func() {
				So(gw.Calls(), ShouldEqual, 1)
			})
		})

		Convey("When nothing matches the filter", func() {
			records, err := gw.Fetch(ctx, model.BenchmarkFilter{MetricID: model.MetricCACPayback})

			Convey("Then an empty result should not be an error", func() {
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})
	})
}

func TestMemoryGateway_FailureScript(t *testing.T) {
	Convey("Given a gateway scripted to fail on specific calls", t, func() {
		transient := &gateway.NetworkError{Endpoint: "memory://benchmarks", Err: errors.New("connection refused")}
		gw := gateway.NewMemoryGateway(
			gateway.WithRecords(fixtureRecords()),
			gateway.WithFailureScript([]error{transient, nil}),
		)
		ctx := context.Background()
		filter := model.BenchmarkFilter{MetricID: model.MetricNDR}

		Convey("When fetching repeatedly", func() {
			_, err1 := gw.Fetch(ctx, filter)
			records, err2 := gw.Fetch(ctx, filter)
			_, err3 := gw.Fetch(ctx, filter)

			Convey("Then the scripted call should fail and the rest succeed", func() {
				So(errors.Is(err1, gateway.ErrNetwork), ShouldBeTrue)
				So(err2, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(err3, ShouldBeNil)
				So(gw.Calls(), ShouldEqual, 3)
			})
		})
	})
}

func TestMemoryGateway_Latency(t *testing.T) {
	Convey("Given a gateway with artificial latency", t, func() {
		gw := gateway.NewMemoryGateway(
			gateway.WithRecords(fixtureRecords()),
			gateway.WithLatency(100*time.Millisecond),
		)

		Convey("When the caller's context expires first", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			_, err := gw.Fetch(ctx, model.BenchmarkFilter{MetricID: model.MetricNDR})

			Convey("Then the fetch should honor the cancellation", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryGateway_SharedStore(t *testing.T) {
	Convey("Given a gateway backed by an external store", t, func() {
		store := repository.NewTreapStore()
		gw := gateway.NewMemoryGateway(gateway.WithStore(store))
		ctx := context.Background()

		Convey("When a record is put into the store directly", func() {
			rec := fixtureRecords()[0]
			So(store.Put(ctx, rec), ShouldBeNil)

			Convey("Then the gateway should see it immediately", func() {
				records, err := gw.Fetch(ctx, model.BenchmarkFilter{MetricID: model.MetricNDR})
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].ID, ShouldEqual, "ndr-1")
			})

			Convey("And Store should expose the same backing store", func() {
				So(gw.Store(), ShouldEqual, store)
			})
		})
	})
}

func TestMemoryGateway_Endpoint(t *testing.T) {
	Convey("Given gateways with default and custom endpoints", t, func() {
		Convey("Then the default endpoint should identify the memory source", func() {
			So(gateway.NewMemoryGateway().Endpoint(), ShouldEqual, "memory://benchmarks")
		})

		Convey("Then a custom endpoint should be honored", func() {
			gw := gateway.NewMemoryGateway(gateway.WithEndpoint("memory://fixtures"))
			So(gw.Endpoint(), ShouldEqual, "memory://fixtures")
		})
	})
}
