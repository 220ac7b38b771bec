package simulator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/okian/boutstats/internal/domain/model"
)

const secondsTolerance = 1e-9

var hundred = decimal.NewFromInt(100)

// Verify compares a served result with the locally computed one and checks
// the invariants every result must satisfy. It returns one line per problem.
func Verify(sc Scenario, want model.AnalyticsResult, got AnalyticsResponse) []string {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	pct := map[string]struct {
		want decimal.Decimal
		got  string
	}{
		"a":    {want.TimeLeadingPct.A, string(got.TimeLeadingPct.A)},
		"b":    {want.TimeLeadingPct.B, string(got.TimeLeadingPct.B)},
		"tied": {want.TimeLeadingPct.Tied, string(got.TimeLeadingPct.Tied)},
	}
	sum := decimal.Zero
	for _, side := range []string{"a", "b", "tied"} {
		p := pct[side]
		d, err := decimal.NewFromString(p.got)
		if err != nil {
			fail("time_leading_pct.%s: %q is not a number", side, p.got)
			continue
		}
		if d.IsNegative() {
			fail("time_leading_pct.%s: negative %s", side, d)
		}
		if !d.Equal(p.want) {
			fail("time_leading_pct.%s: got %s, want %s", side, d, p.want)
		}
		sum = sum.Add(d)
	}
	if !sum.Equal(hundred) {
		fail("time_leading_pct sums to %s", sum)
	}

	if got.LeadChanges != want.LeadChanges {
		fail("lead_changes: got %d, want %d", got.LeadChanges, want.LeadChanges)
	}
	if got.LongestRun.A != want.LongestRun.A || got.LongestRun.B != want.LongestRun.B {
		fail("longest_run: got %d/%d, want %d/%d", got.LongestRun.A, got.LongestRun.B, want.LongestRun.A, want.LongestRun.B)
	}
	points := sc.Points()
	if got.LongestRun.A > points.A || got.LongestRun.B > points.B {
		fail("longest_run %d/%d exceeds points scored %d/%d", got.LongestRun.A, got.LongestRun.B, points.A, points.B)
	}

	checkRecovery := func(side string, w model.Recovery, g *float64) {
		switch {
		case !w.Defined && g != nil:
			fail("bounce_back_seconds.%s: got %g, want null", side, *g)
		case w.Defined && g == nil:
			fail("bounce_back_seconds.%s: got null, want %g", side, w.Seconds)
		case w.Defined && math.Abs(w.Seconds-*g) > secondsTolerance:
			fail("bounce_back_seconds.%s: got %g, want %g", side, *g, w.Seconds)
		}
	}
	checkRecovery("a", want.BounceBackSeconds.A, got.BounceBackSeconds.A)
	checkRecovery("b", want.BounceBackSeconds.B, got.BounceBackSeconds.B)

	if got.ScoreEvents != want.ScoreEvents || got.CardEvents != want.CardEvents || got.SkippedEvents != want.SkippedEvents {
		fail("event counts: got %d/%d/%d, want %d/%d/%d",
			got.ScoreEvents, got.CardEvents, got.SkippedEvents,
			want.ScoreEvents, want.CardEvents, want.SkippedEvents)
	}
	if got.Inconsistent != want.Inconsistent {
		fail("inconsistent: got %t, want %t", got.Inconsistent, want.Inconsistent)
	}
	return problems
}
