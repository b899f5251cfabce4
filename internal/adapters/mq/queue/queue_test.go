package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	queue "github.com/njdifiore/benchmetrics/internal/adapters/mq/queue"
	"github.com/njdifiore/benchmetrics/internal/domain/model"
)

func testRecord(id string) queue.Record {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return queue.Record{
		ID:              id,
		MetricID:        model.MetricNDR,
		RevenueRange:    model.Revenue1MTo5M,
		Value:           decimal.NewFromInt(110),
		PeriodStart:     start,
		PeriodEnd:       start.AddDate(0, 3, 0),
		ConfidenceScore: 0.9,
		DataQuality:     model.QualityHigh,
		SampleSize:      25,
	}
}

func TestInMemoryQueue_EnqueueDequeue(t *testing.T) {
	Convey("Given a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		ctx := context.Background()

		Convey("When records are enqueued", func() {
			So(q.Enqueue(ctx, testRecord("rec-1")), ShouldBeTrue)
			So(q.Enqueue(ctx, testRecord("rec-2")), ShouldBeTrue)

			Convey("Then the length should reflect them", func() {
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And they should dequeue in submission order", func() {
				out := q.Dequeue(ctx)
				first := <-out
				second := <-out
				So(first.ID, ShouldEqual, "rec-1")
				So(second.ID, ShouldEqual, "rec-2")
			})
		})
	})
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	Convey("Given a queue with capacity two", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		ctx := context.Background()

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, testRecord("rec-1")), ShouldBeTrue)
			So(q.Enqueue(ctx, testRecord("rec-2")), ShouldBeTrue)

			Convey("Then further enqueues should be refused without blocking", func() {
				So(q.Enqueue(ctx, testRecord("rec-3")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And draining should make room again", func() {
				out := q.Dequeue(ctx)
				<-out
				So(q.Enqueue(ctx, testRecord("rec-3")), ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryQueue_Close(t *testing.T) {
	Convey("Given a queue with pending records", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		ctx := context.Background()
		So(q.Enqueue(ctx, testRecord("rec-1")), ShouldBeTrue)

		Convey("When it is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then it should report closed and refuse new records", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, testRecord("rec-2")), ShouldBeFalse)
			})

			Convey("And pending records should still drain before the channel closes", func() {
				out := q.Dequeue(ctx)
				rec, ok := <-out
				So(ok, ShouldBeTrue)
				So(rec.ID, ShouldEqual, "rec-1")

				_, ok = <-out
				So(ok, ShouldBeFalse)
			})

			Convey("And closing twice should be harmless", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}

func TestInMemoryQueue_DequeueCancellation(t *testing.T) {
	Convey("Given a consumer with a cancellable context", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		ctx, cancel := context.WithCancel(context.Background())

		Convey("When the consumer context is cancelled", func() {
			out := q.Dequeue(ctx)
			cancel()
			So(q.Enqueue(context.Background(), testRecord("rec-1")), ShouldBeTrue)

			Convey("Then the dequeue channel should close", func() {
				select {
				case _, ok := <-out:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So(true, ShouldBeFalse) // dequeue channel never closed
				}
			})
		})
	})
}
