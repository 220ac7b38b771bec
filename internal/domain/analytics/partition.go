package analytics

import "github.com/okian/boutstats/internal/domain/model"

// Partition converts a normalized timeline into intervals covering
// [0, duration) with no gaps or overlaps. CARD events never open or close an
// interval. Two SCORE events at the same timestamp yield a zero-length interval.
func Partition(tl Timeline) []model.Interval {
	scores := tl.Scores()
	if len(scores) == 0 {
		return []model.Interval{{Start: 0, End: tl.DurationSeconds, Leader: model.LeaderTied}}
	}

	out := make([]model.Interval, 0, len(scores)+1)
	if first := *scores[0].ElapsedSeconds; first > 0 {
		out = append(out, model.Interval{Start: 0, End: first, Leader: model.LeaderTied})
	}
	for i, e := range scores {
		end := tl.DurationSeconds
		if i+1 < len(scores) {
			end = *scores[i+1].ElapsedSeconds
		}
		out = append(out, model.Interval{
			Start:  *e.ElapsedSeconds,
			End:    end,
			Leader: model.LeaderFromDiff(*e.ScoreDiffAfter),
		})
	}
	return out
}
