package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	dedupe "github.com/njdifiore/benchmetrics/internal/domain/dedupe"
)

func TestDeduper_SeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When an ID is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "rec-1")
			second := d.SeenAndRecord(ctx, "rec-1")

			Convey("Then only the first submission should be new", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When distinct IDs are recorded", func() {
			So(d.SeenAndRecord(ctx, "rec-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "rec-2"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "rec-3"), ShouldBeFalse)

			Convey("Then all of them should be tracked", func() {
				So(d.Size(), ShouldEqual, 3)
			})
		})
	})
}

func TestDeduper_Unrecord(t *testing.T) {
	Convey("Given a deduper tracking an ID", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()
		So(d.SeenAndRecord(ctx, "rec-1"), ShouldBeFalse)

		Convey("When the ID is unrecorded", func() {
			d.Unrecord(ctx, "rec-1")

			Convey("Then it should be accepted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "rec-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown ID", func() {
			d.Unrecord(ctx, "nope")

			Convey("Then nothing should change", func() {
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestDeduper_FIFOEviction(t *testing.T) {
	Convey("Given a deduper bounded to three IDs", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		ctx := context.Background()

		So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, "c"), ShouldBeFalse)

		Convey("When a fourth ID arrives", func() {
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)

			Convey("Then the oldest ID should be forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse) // forgotten, so new again
			})

			Convey("And the newer IDs should still be remembered", func() {
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
			})
		})

		Convey("When an ID is unrecorded and re-recorded into a different slot", func() {
			d.Unrecord(ctx, "c")
			So(d.SeenAndRecord(ctx, "c"), ShouldBeFalse) // takes a's slot, leaving a stale c behind
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "e"), ShouldBeFalse) // wraps over c's stale old slot

			Convey("Then the re-recorded ID must survive the wrap", func() {
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			})
		})
	})
}

func TestDeduper_ConcurrentAccess(t *testing.T) {
	Convey("Given a shared deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When many goroutines race on the same IDs", func() {
			var newCount atomic.Int64
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("rec-%d", j)) {
							newCount.Add(1)
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each ID should be new exactly once", func() {
				So(newCount.Load(), ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}
