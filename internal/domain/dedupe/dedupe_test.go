package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/boutstats/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func key(bout, event string) dedupe.Key { return dedupe.Key{BoutID: bout, EventID: event} }

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new in-memory deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When an event is new", func() {
			seen := d.SeenAndRecord(ctx, key("b1", "e1"))

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an event is submitted twice", func() {
			d.SeenAndRecord(ctx, key("b1", "e1"))
			seen := d.SeenAndRecord(ctx, key("b1", "e1"))

			Convey("Then the second submission is a duplicate", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same event id is used in two bouts", func() {
			d.SeenAndRecord(ctx, key("b1", "e1"))
			seen := d.SeenAndRecord(ctx, key("b2", "e1"))

			Convey("Then they are tracked independently", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When an event is unrecorded", func() {
			d.SeenAndRecord(ctx, key("b1", "e1"))
			d.Unrecord(ctx, key("b1", "e1"))
			d.Unrecord(ctx, key("b1", "missing"))

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, key("b1", "e1")), ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryDeduper_Eviction(t *testing.T) {
	Convey("Given a deduper bounded to three keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		for i := 0; i < 4; i++ {
			d.SeenAndRecord(ctx, key("b", fmt.Sprint(i)))
		}

		Convey("Then the oldest key is evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, key("b", "3")), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, key("b", "0")), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, key("b", fmt.Sprint(i)))
		}

		Convey("Then nothing is evicted", func() {
			So(d.Size(), ShouldEqual, 1000)
			So(d.SeenAndRecord(ctx, key("b", "0")), ShouldBeTrue)
		})
	})
}

func TestInMemoryDeduper_Concurrent(t *testing.T) {
	Convey("Given concurrent submissions of the same key", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var fresh atomic.Int64
		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, key("b", "same")) {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one submission is recorded as new", func() {
			So(fresh.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
