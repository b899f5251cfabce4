package worker_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	queue "github.com/njdifiore/benchmetrics/internal/adapters/mq/queue"
	worker "github.com/njdifiore/benchmetrics/internal/adapters/mq/worker"
	repository "github.com/njdifiore/benchmetrics/internal/adapters/repository"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
	"github.com/njdifiore/benchmetrics/internal/domain/validate"
	"github.com/njdifiore/benchmetrics/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func validRecord(id string) worker.Record {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return worker.Record{
		ID:              id,
		MetricID:        model.MetricNDR,
		SourceID:        "test",
		RevenueRange:    model.Revenue1MTo5M,
		Value:           decimal.NewFromInt(110),
		PeriodStart:     start,
		PeriodEnd:       start.AddDate(0, 3, 0),
		ConfidenceScore: 0.9,
		DataQuality:     model.QualityHigh,
		SampleSize:      25,
	}
}

// waitForCount polls the store until it holds want records or the deadline
// passes.
func waitForCount(ctx context.Context, store *repository.TreapStore, want int) bool {
	deadline := time.After(2 * time.Second)
	for {
		if store.Count(ctx) >= want {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestIngestWorker_ProcessesRecords(t *testing.T) {
	Convey("Given a running ingest worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		store := repository.NewTreapStore()
		w := worker.NewIngestWorker(q, validate.NewRecordValidator(), store, worker.WithName("test"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a valid record is enqueued", func() {
			So(q.Enqueue(ctx, validRecord("rec-1")), ShouldBeTrue)

			Convey("Then it should land in the store", func() {
				So(waitForCount(ctx, store, 1), ShouldBeTrue)

				got, err := store.Get(ctx, "rec-1")
				So(err, ShouldBeNil)
				So(got.Value.String(), ShouldEqual, "110")
			})
		})

		Convey("When an invalid record is enqueued", func() {
			bad := validRecord("rec-bad")
			bad.ConfidenceScore = 7 // outside [0,1]
			So(q.Enqueue(ctx, bad), ShouldBeTrue)
			So(q.Enqueue(ctx, validRecord("rec-good")), ShouldBeTrue)

			Convey("Then it should be rejected while later records still flow", func() {
				So(waitForCount(ctx, store, 1), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)

				_, err := store.Get(ctx, "rec-bad")
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the worker is shut down", func() {
			err := w.Shutdown(ctx)

			Convey("Then it should stop cleanly", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPool_DrainsOnShutdown(t *testing.T) {
	Convey("Given a started pool with queued records", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		store := repository.NewTreapStore()
		pool := worker.NewPool(3, q, validate.NewRecordValidator(), store)

		ctx := context.Background()
		for i := 0; i < 20; i++ {
			So(q.Enqueue(ctx, validRecord(fmt.Sprintf("rec-%d", i))), ShouldBeTrue)
		}
		pool.Start(ctx)

		Convey("When the pool is shut down", func() {
			err := pool.Shutdown(ctx)

			Convey("Then the queue should be closed and fully drained", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 20)
			})
		})
	})
}

func TestPool_DefaultWorkerCount(t *testing.T) {
	Convey("Given a pool asked for zero workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		store := repository.NewTreapStore()
		pool := worker.NewPool(0, q, validate.NewRecordValidator(), store)

		Convey("When started and immediately shut down", func() {
			ctx := context.Background()
			pool.Start(ctx)
			err := pool.Shutdown(ctx)

			Convey("Then it should still run with a sane default", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
