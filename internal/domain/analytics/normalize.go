package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/boutstats/internal/domain/model"
)

// Timeline is a normalized, time-ordered event sequence for one bout.
type Timeline struct {
	DurationSeconds float64
	// Events is sorted by elapsed time; same-timestamp events keep their
	// submission order. Every event has a non-nil ElapsedSeconds.
	Events []model.MatchEvent
	// Skipped counts events dropped for lacking a timestamp.
	Skipped int
	// Issues lists score progression inconsistencies, in timeline order.
	Issues []model.Issue
}

// Scores returns the SCORE events of the timeline in order, as a new slice.
func (t Timeline) Scores() []model.MatchEvent {
	out := make([]model.MatchEvent, 0, len(t.Events))
	for _, e := range t.Events {
		if e.IsScore() {
			out = append(out, e)
		}
	}
	return out
}

// ScoreCount returns the number of SCORE events.
func (t Timeline) ScoreCount() int {
	n := 0
	for _, e := range t.Events {
		if e.IsScore() {
			n++
		}
	}
	return n
}

// Normalize validates events against the bout duration and returns them sorted
// by elapsed time with a stable tie-break. Input order is irrelevant; the input
// slice is not modified.
func Normalize(durationSeconds float64, events []model.MatchEvent) (Timeline, error) {
	if err := validateDuration(durationSeconds); err != nil {
		return Timeline{}, err
	}

	timed := make([]model.MatchEvent, 0, len(events))
	skipped := 0
	for i, e := range events {
		if err := validateEvent(i, e, durationSeconds); err != nil {
			return Timeline{}, err
		}
		if e.ElapsedSeconds == nil {
			skipped++
			continue
		}
		timed = append(timed, e)
	}

	slices.SortStableFunc(timed, func(a, b model.MatchEvent) int {
		return cmp.Compare(*a.ElapsedSeconds, *b.ElapsedSeconds)
	})

	return Timeline{
		DurationSeconds: durationSeconds,
		Events:          timed,
		Skipped:         skipped,
		Issues:          checkProgression(timed),
	}, nil
}

// ValidateBout reports whether a bout can be analyzed at all.
func ValidateBout(bout model.Bout) error {
	return validateDuration(bout.DurationSeconds)
}

// ValidateEvent applies the per-event checks of Normalize to a single event,
// so ingestion can refuse events that would make a bout unanalyzable.
func ValidateEvent(bout model.Bout, e model.MatchEvent) error {
	if err := ValidateBout(bout); err != nil {
		return err
	}
	return validateEvent(-1, e, bout.DurationSeconds)
}

func validateDuration(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return &ValidationError{Index: -1, Field: "duration_seconds", Reason: "must be a finite number > 0"}
	}
	return nil
}

func validateEvent(i int, e model.MatchEvent, duration float64) error {
	invalid := func(field, reason string) error {
		return &ValidationError{Index: i, EventID: e.EventID, Field: field, Reason: reason}
	}

	switch e.Kind {
	case model.KindScore:
		if e.Scorer != model.CompetitorA && e.Scorer != model.CompetitorB {
			return invalid("scorer", "is required for score events")
		}
		if e.ScoreDiffAfter == nil {
			return invalid("score_diff_after", "is required for score events")
		}
	case model.KindCard:
	default:
		return invalid("kind", "must be score or card")
	}

	if e.ElapsedSeconds != nil {
		t := *e.ElapsedSeconds
		switch {
		case math.IsNaN(t) || math.IsInf(t, 0):
			return invalid("elapsed_seconds", "must be finite")
		case t < 0:
			return invalid("elapsed_seconds", "must not be negative")
		case t > duration:
			return invalid("elapsed_seconds", "exceeds bout duration")
		}
	}
	return nil
}

// checkProgression flags SCORE events whose differential is not a single-point
// step from the previous SCORE event (starting from 0), or that move against
// their own scorer. The data itself is never altered.
func checkProgression(events []model.MatchEvent) []model.Issue {
	var issues []model.Issue
	prev := 0
	for i, e := range events {
		if !e.IsScore() {
			continue
		}
		diff := *e.ScoreDiffAfter
		step := diff - prev

		var kind model.IssueKind
		switch {
		case step != 1 && step != -1:
			kind = model.IssueNonUnitStep
		case e.Scorer == model.CompetitorA && step < 0, e.Scorer == model.CompetitorB && step > 0:
			kind = model.IssueScorerMismatch
		}
		if kind != "" {
			issues = append(issues, model.Issue{
				Index:    i,
				EventID:  e.EventID,
				Elapsed:  *e.ElapsedSeconds,
				Kind:     kind,
				PrevDiff: prev,
				Diff:     diff,
			})
		}
		prev = diff
	}
	return issues
}
