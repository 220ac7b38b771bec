package analytics

import "github.com/okian/boutstats/internal/domain/model"

// Index of each leader in the weights passed to largestRemainder.
const (
	slotA = iota
	slotB
	slotTied
)

// LeadershipStats is the output of the leadership aggregator.
type LeadershipStats struct {
	Seconds     model.LeaderSeconds
	Percentages model.Percentages
	LeadChanges int
}

// Leadership accumulates time per leader and counts lead changes. A lead change
// is a switch between A and B; TIED intervals are skipped, so A -> TIED -> B is
// one change and A -> TIED -> A is none.
func (e *Engine) Leadership(intervals []model.Interval) LeadershipStats {
	var secs model.LeaderSeconds
	changes := 0
	last := model.LeaderTied

	for _, iv := range intervals {
		d := iv.Duration()
		switch iv.Leader {
		case model.LeaderA:
			secs.A += d
		case model.LeaderB:
			secs.B += d
		default:
			secs.Tied += d
		}

		if iv.Leader == model.LeaderTied {
			continue
		}
		if d == 0 && !e.zeroLengthLeads {
			continue
		}
		if last != model.LeaderTied && iv.Leader != last {
			changes++
		}
		last = iv.Leader
	}

	pct := largestRemainder([]float64{secs.A, secs.B, secs.Tied}, e.precision, slotTied)
	return LeadershipStats{
		Seconds: secs,
		Percentages: model.Percentages{
			A:    pct[slotA],
			B:    pct[slotB],
			Tied: pct[slotTied],
		},
		LeadChanges: changes,
	}
}
