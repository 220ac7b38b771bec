package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/boutstats/internal/app"
	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(1000),
			service.WithDedupeSize(10_000),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("When many bouts receive events concurrently", func() {
			const bouts = 10
			// A scores at 10, 20, 30; B answers at 40, 50. Submitted twice each.
			events := []model.MatchEvent{
				scoreEvent("e1", 10, model.CompetitorA, 1),
				scoreEvent("e2", 20, model.CompetitorA, 2),
				scoreEvent("e3", 30, model.CompetitorA, 3),
				scoreEvent("e4", 40, model.CompetitorB, 2),
				scoreEvent("e5", 50, model.CompetitorB, 1),
				{EventID: "c1", ElapsedSeconds: model.Float64(45), Kind: model.KindCard},
				{EventID: "n1", Kind: model.KindCard},
			}

			var wg sync.WaitGroup
			for i := range bouts {
				id := fmt.Sprintf("bout-%d", i)
				_, err := svc.RegisterBout(ctx, model.Bout{BoutID: id, DurationSeconds: 100})
				So(err, ShouldBeNil)
				for round := range 2 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						for j := range events {
							// Reverse order on the second round.
							ev := events[j]
							if round == 1 {
								ev = events[len(events)-1-j]
							}
							_, _ = svc.SubmitEvent(ctx, id, ev)
						}
					}()
				}
			}
			wg.Wait()

			Convey("Then every bout reports the same statistics as a direct engine run", func() {
				want, err := analytics.New().Analyze(model.Bout{DurationSeconds: 100}, events)
				So(err, ShouldBeNil)

				for i := range bouts {
					got, err := svc.Analytics(ctx, fmt.Sprintf("bout-%d", i))
					So(err, ShouldBeNil)
					So(got.TimeLeadingPct.A.Equal(want.TimeLeadingPct.A), ShouldBeTrue)
					So(got.TimeLeadingPct.Tied.Equal(want.TimeLeadingPct.Tied), ShouldBeTrue)
					So(got.LongestRun, ShouldResemble, model.PerCompetitor{A: 3, B: 2})
					So(got.ScoreEvents, ShouldEqual, 5)
					So(got.CardEvents, ShouldEqual, 1)
					So(got.SkippedEvents, ShouldEqual, 1)
					So(got.BounceBackSeconds.B.Defined, ShouldBeTrue)
				}
				So(svc.GetStats(ctx)["dedupeEntries"], ShouldEqual, int64(bouts*len(events)))
			})
		})
	})
}
