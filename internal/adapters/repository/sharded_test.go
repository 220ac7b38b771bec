package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/boutstats/internal/adapters/repository"
	"github.com/okian/boutstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func scoreAt(t float64, who model.Competitor, diff int) model.MatchEvent {
	return model.MatchEvent{ElapsedSeconds: model.Float64(t), Kind: model.KindScore, Scorer: who, ScoreDiffAfter: model.Int(diff)}
}

func TestShardedStore(t *testing.T) {
	Convey("Given a sharded store with one bout", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(repository.WithShardCount(4), repository.WithMaxEventsPerBout(3))
		So(store.CreateBout(ctx, model.Bout{BoutID: "b1", DurationSeconds: 180}), ShouldBeNil)

		Convey("When registering the same bout again", func() {
			err := store.CreateBout(ctx, model.Bout{BoutID: "b1", DurationSeconds: 90})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrAlreadyExists), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
				b, err := store.Bout(ctx, "b1")
				So(err, ShouldBeNil)
				So(b.DurationSeconds, ShouldEqual, 180)
			})
		})

		Convey("When appending events", func() {
			v1, err1 := store.AppendEvent(ctx, "b1", scoreAt(10, model.CompetitorA, 1))
			v2, err2 := store.AppendEvent(ctx, "b1", scoreAt(5, model.CompetitorB, 0))

			Convey("Then versions increase and order is preserved", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(v1, ShouldEqual, 1)
				So(v2, ShouldEqual, 2)

				snap, err := store.Snapshot(ctx, "b1")
				So(err, ShouldBeNil)
				So(snap.Version, ShouldEqual, 2)
				So(len(snap.Events), ShouldEqual, 2)
				So(*snap.Events[0].ElapsedSeconds, ShouldEqual, 10)
				So(snap.Bout.DurationSeconds, ShouldEqual, 180)
			})
		})

		Convey("When the caller mutates an event after appending it", func() {
			ev := scoreAt(10, model.CompetitorA, 1)
			_, err := store.AppendEvent(ctx, "b1", ev)
			So(err, ShouldBeNil)
			*ev.ElapsedSeconds = 99

			Convey("Then the stored copy is unaffected", func() {
				snap, _ := store.Snapshot(ctx, "b1")
				So(*snap.Events[0].ElapsedSeconds, ShouldEqual, 10)
			})
		})

		Convey("When the event cap is reached", func() {
			for i := 0; i < 3; i++ {
				_, err := store.AppendEvent(ctx, "b1", scoreAt(float64(i), model.CompetitorA, i+1))
				So(err, ShouldBeNil)
			}
			_, err := store.AppendEvent(ctx, "b1", scoreAt(4, model.CompetitorA, 4))

			Convey("Then further events are refused", func() {
				So(errors.Is(err, repository.ErrEventLimit), ShouldBeTrue)
			})
		})

		Convey("When using an unknown bout", func() {
			_, errAppend := store.AppendEvent(ctx, "nope", scoreAt(1, model.CompetitorA, 1))
			_, errSnap := store.Snapshot(ctx, "nope")
			_, errRes := store.Result(ctx, "nope")
			_, errBout := store.Bout(ctx, "nope")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(errAppend, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(errSnap, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(errRes, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(errBout, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When caching results", func() {
			_, err := store.Result(ctx, "b1")
			So(errors.Is(err, repository.ErrNoResult), ShouldBeTrue)

			v, _ := store.AppendEvent(ctx, "b1", scoreAt(10, model.CompetitorA, 1))
			saved, err := store.SaveResult(ctx, "b1", v, model.AnalyticsResult{ScoreEvents: 1})
			So(err, ShouldBeNil)
			So(saved, ShouldBeTrue)

			Convey("Then the result is current until a new event arrives", func() {
				cached, err := store.Result(ctx, "b1")
				So(err, ShouldBeNil)
				So(cached.Current, ShouldBeTrue)
				So(cached.Result.ScoreEvents, ShouldEqual, 1)

				_, _ = store.AppendEvent(ctx, "b1", scoreAt(20, model.CompetitorA, 2))
				cached, _ = store.Result(ctx, "b1")
				So(cached.Current, ShouldBeFalse)
			})

			Convey("And results for old versions are discarded", func() {
				_, _ = store.AppendEvent(ctx, "b1", scoreAt(20, model.CompetitorA, 2))
				saved, err := store.SaveResult(ctx, "b1", v, model.AnalyticsResult{ScoreEvents: 99})
				So(err, ShouldBeNil)
				So(saved, ShouldBeFalse)
				cached, _ := store.Result(ctx, "b1")
				So(cached.Result.ScoreEvents, ShouldEqual, 1)
			})
		})
	})
}

func TestShardedStore_Concurrent(t *testing.T) {
	Convey("Given many writers across bouts", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(repository.WithMaxEventsPerBout(1000))
		for b := 0; b < 8; b++ {
			So(store.CreateBout(ctx, model.Bout{BoutID: fmt.Sprint("b", b), DurationSeconds: 600}), ShouldBeNil)
		}

		var wg sync.WaitGroup
		for b := 0; b < 8; b++ {
			for w := 0; w < 4; w++ {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					for i := 0; i < 50; i++ {
						_, _ = store.AppendEvent(ctx, id, scoreAt(float64(i), model.CompetitorA, i+1))
					}
				}(fmt.Sprint("b", b))
			}
		}
		wg.Wait()

		Convey("Then every append is accounted for", func() {
			for b := 0; b < 8; b++ {
				snap, err := store.Snapshot(ctx, fmt.Sprint("b", b))
				So(err, ShouldBeNil)
				So(len(snap.Events), ShouldEqual, 200)
				So(snap.Version, ShouldEqual, 200)
			}
		})
	})
}
