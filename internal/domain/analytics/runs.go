package analytics

import "github.com/okian/boutstats/internal/domain/model"

// RunStats is the output of the run and recovery analyzer.
type RunStats struct {
	LongestRun model.PerCompetitor
	BounceBack model.BounceBack
}

// recoveryAcc accumulates bounce-back latencies for one competitor.
type recoveryAcc struct {
	pending []float64 // times of deficit events not yet answered
	sum     float64
	count   int
}

func (r *recoveryAcc) answer(at float64) {
	for _, t := range r.pending {
		r.sum += at - t
		r.count++
	}
	r.pending = r.pending[:0]
}

func (r *recoveryAcc) result() model.Recovery {
	if r.count == 0 {
		return model.Undefined
	}
	return model.Recovery{Seconds: r.sum / float64(r.count), Occurrences: r.count, Defined: true}
}

// RunsAndRecovery scans SCORE events in order, in one pass, and returns the
// longest unanswered run per competitor and the average bounce-back latency.
//
// A deficit event for X is a score after which the reported differential has
// moved against X and X is behind (under NewDeficitOnly, only if X was not
// behind before it). The scorer field is not consulted for this, so
// inconsistent events still count by their differential. Each deficit event is
// answered by X's next score; unanswered ones are ignored.
func (e *Engine) RunsAndRecovery(scores []model.MatchEvent) RunStats {
	var (
		best   model.PerCompetitor
		owner  model.Competitor
		streak int
		rec    = map[model.Competitor]*recoveryAcc{
			model.CompetitorA: {},
			model.CompetitorB: {},
		}
		prevDiff int
	)

	for _, ev := range scores {
		if !ev.IsScore() {
			continue
		}
		at := *ev.ElapsedSeconds
		diff := *ev.ScoreDiffAfter
		scorer := ev.Scorer

		if scorer == owner {
			streak++
		} else {
			owner, streak = scorer, 1
		}
		switch owner {
		case model.CompetitorA:
			best.A = max(best.A, streak)
		case model.CompetitorB:
			best.B = max(best.B, streak)
		}

		if acc, ok := rec[scorer]; ok {
			acc.answer(at)
		}

		for _, x := range [...]model.Competitor{model.CompetitorA, model.CompetitorB} {
			now, before := perspective(x, diff), perspective(x, prevDiff)
			if now < 0 && now < before && (e.bounceBack == DeficitEvents || before >= 0) {
				rec[x].pending = append(rec[x].pending, at)
			}
		}
		prevDiff = diff
	}

	return RunStats{
		LongestRun: best,
		BounceBack: model.BounceBack{
			A: rec[model.CompetitorA].result(),
			B: rec[model.CompetitorB].result(),
		},
	}
}

// perspective returns the differential as seen by c (positive means c leads).
func perspective(c model.Competitor, diff int) int {
	if c == model.CompetitorB {
		return -diff
	}
	return diff
}
