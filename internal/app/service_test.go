package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/njdifiore/benchmetrics/internal/adapters/gateway"
	"github.com/njdifiore/benchmetrics/internal/adapters/http/api"
	service "github.com/njdifiore/benchmetrics/internal/app"
	"github.com/njdifiore/benchmetrics/internal/domain/calc"
	"github.com/njdifiore/benchmetrics/internal/domain/compare"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// The HTTP layer consumes the service directly; keep the wiring honest.
var (
	_ api.Dependencies  = (*service.Service)(nil)
	_ api.StatsProvider = (*service.Service)(nil)
)

var periodBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func benchmarkFixtures(values ...float64) []model.BenchmarkRecord {
	records := make([]model.BenchmarkRecord, len(values))
	for i, v := range values {
		start := periodBase.AddDate(0, 3*i, 0)
		records[i] = model.BenchmarkRecord{
			MetricID:        model.MetricNDR,
			RevenueRange:    model.Revenue1MTo5M,
			Value:           decimal.NewFromFloat(v),
			PeriodStart:     start,
			PeriodEnd:       start.AddDate(0, 3, 0),
			ConfidenceScore: 0.9,
			DataQuality:     model.QualityHigh,
			SampleSize:      25,
		}
	}
	return records
}

func startedService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When started", func() {
			err := svc.Start(context.Background())
			defer svc.Stop()

			Convey("Then it should be running with a memory gateway", func() {
				So(err, ShouldBeNil)

				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["gateway_endpoint"], ShouldEqual, "memory://benchmarks")
				So(stats["breaker_state"], ShouldEqual, "closed")
			})

			Convey("And starting twice should be harmless", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})

		Convey("When stopped after starting", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			svc.Stop()

			Convey("Then it should report stopped", func() {
				So(svc.GetStats()["started"], ShouldBeFalse)
			})

			Convey("And stopping twice should be harmless", func() {
				svc.Stop()
			})
		})
	})
}

func TestService_CalculateMetric(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When calculating NDR", func() {
			result, err := svc.CalculateMetric(ctx, model.MetricNDR, model.CalculationInput{
				calc.FieldStartingARR:  decimal.NewFromInt(1000000),
				calc.FieldExpansions:   decimal.NewFromInt(200000),
				calc.FieldContractions: decimal.NewFromInt(50000),
				calc.FieldChurn:        decimal.NewFromInt(50000),
			})

			Convey("Then it should return the derived value", func() {
				So(err, ShouldBeNil)
				So(result.String(), ShouldEqual, "110")
			})
		})

		Convey("When the metric type is unknown", func() {
			_, err := svc.CalculateMetric(ctx, "burn_multiple", model.CalculationInput{})

			Convey("Then the calculator error should surface", func() {
				So(errors.Is(err, calc.ErrUnknownMetric), ShouldBeTrue)
			})
		})
	})
}

func TestService_CompareBenchmark(t *testing.T) {
	Convey("Given a started service with seeded benchmarks", t, func() {
		svc := startedService(service.WithTargetSampleSize(5))
		defer svc.Stop()
		ctx := context.Background()
		So(svc.SeedBenchmarks(benchmarkFixtures(10, 20, 30, 40, 50)), ShouldBeTrue)

		filter := model.BenchmarkFilter{
			MetricID:     model.MetricNDR,
			RevenueRange: model.Revenue1MTo5M,
		}

		Convey("When comparing a company value", func() {
			result, err := svc.CompareBenchmark(ctx, filter, 35)

			Convey("Then the comparison should position the company", func() {
				So(err, ShouldBeNil)
				So(result.BenchmarkValue, ShouldEqual, 30)
				So(result.PercentileRank, ShouldEqual, 60)
				So(result.SampleSize, ShouldEqual, 5)
			})
		})

		Convey("When the filter matches no records", func() {
			empty := model.BenchmarkFilter{
				MetricID:     model.MetricCACPayback,
				RevenueRange: model.Revenue50MPlus,
			}
			_, err := svc.CompareBenchmark(ctx, empty, 12)

			Convey("Then insufficient data should be reported", func() {
				So(errors.Is(err, compare.ErrInsufficientData), ShouldBeTrue)
			})
		})
	})
}

func TestService_GatewayInjection(t *testing.T) {
	Convey("Given a service with an injected failing gateway", t, func() {
		transient := &gateway.NetworkError{Endpoint: "memory://benchmarks", Err: errors.New("unreachable")}
		gw := gateway.NewMemoryGateway(
			gateway.WithRecords(benchmarkFixtures(10, 20, 30)),
			gateway.WithFailureScript([]error{transient, nil}),
		)
		svc := startedService(
			service.WithGateway(gw),
			service.WithRetryPolicy(3, time.Millisecond, 10*time.Millisecond),
			service.WithTargetSampleSize(3),
		)
		defer svc.Stop()

		Convey("When comparing through the flaky gateway", func() {
			result, err := svc.CompareBenchmark(context.Background(), model.BenchmarkFilter{
				MetricID:     model.MetricNDR,
				RevenueRange: model.Revenue1MTo5M,
			}, 25)

			Convey("Then the retry should absorb the transient failure", func() {
				So(err, ShouldBeNil)
				So(result.SampleSize, ShouldEqual, 3)
				So(gw.Calls(), ShouldEqual, 2)
			})
		})
	})
}

func TestService_IngestRoundtrip(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(service.WithIngestWorkers(2), service.WithTargetSampleSize(3))
		ctx := context.Background()

		records := benchmarkFixtures(10, 20, 30)
		for i := range records {
			records[i].ID = "ingest-" + string(rune('a'+i))
			records[i].SourceID = "test"
		}

		Convey("When records flow through dedupe, queue and workers", func() {
			for _, rec := range records {
				So(svc.SeenAndRecord(ctx, rec.ID), ShouldBeFalse)
				So(svc.Enqueue(ctx, rec), ShouldBeTrue)
			}

			// The workers ingest asynchronously; wait for the store to fill.
			stored := func() bool {
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					if svc.GetStats()["stored_records"] == 3 {
						return true
					}
					time.Sleep(5 * time.Millisecond)
				}
				return false
			}
			So(stored(), ShouldBeTrue)

			Convey("Then the ingested records should be servable by comparisons", func() {
				result, err := svc.CompareBenchmark(ctx, model.BenchmarkFilter{
					MetricID:     model.MetricNDR,
					RevenueRange: model.Revenue1MTo5M,
				}, 25)

				So(err, ShouldBeNil)
				So(result.SampleSize, ShouldEqual, 3)
				So(result.BenchmarkValue, ShouldEqual, 20)
			})

			svc.Stop()
		})

		Convey("When a record is submitted twice", func() {
			So(svc.SeenAndRecord(ctx, "dup-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "dup-1"), ShouldBeTrue)

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "dup-1")
				So(svc.SeenAndRecord(ctx, "dup-1"), ShouldBeFalse)
			})

			svc.Stop()
		})
	})
}

func TestService_DedupeSize(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		ctx := context.Background()

		Convey("When record IDs are marked and rolled back", func() {
			So(svc.Size(), ShouldEqual, 0)
			svc.SeenAndRecord(ctx, "size-1")
			svc.SeenAndRecord(ctx, "size-2")

			Convey("Then the idempotency set tracks the marks", func() {
				So(svc.Size(), ShouldEqual, 2)
				svc.Unrecord(ctx, "size-2")
				So(svc.Size(), ShouldEqual, 1)
			})

			svc.Stop()
		})

		Convey("When the service was never started", func() {
			fresh := service.New()

			Convey("Then the idempotency set reads as empty", func() {
				So(fresh.Size(), ShouldEqual, 0)
			})

			svc.Stop()
		})
	})
}
