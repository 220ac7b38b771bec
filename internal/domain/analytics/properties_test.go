package analytics_test

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomBout builds a consistent timeline with integer timestamps, a few cards
// and some duplicate timestamps.
func randomBout(r *rand.Rand) (model.Bout, []model.MatchEvent, model.PerCompetitor) {
	duration := float64(60 + r.IntN(540))
	n := r.IntN(25)
	events := make([]model.MatchEvent, 0, n)
	var points model.PerCompetitor
	diff := 0
	t := 0.0
	for i := 0; i < n; i++ {
		if r.IntN(4) > 0 {
			t += float64(r.IntN(20))
		}
		if t > duration {
			break
		}
		if r.IntN(6) == 0 {
			events = append(events, card(t))
			continue
		}
		who := model.CompetitorA
		if r.IntN(2) == 0 {
			who = model.CompetitorB
		}
		if who == model.CompetitorA {
			diff++
			points.A++
		} else {
			diff--
			points.B++
		}
		events = append(events, score(t, who, diff))
	}
	return bout(duration), events, points
}

func TestAnalyze_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	hundred := decimal.NewFromInt(100)

	for _, places := range []int{0, 2} {
		engine := analytics.New(analytics.WithPrecision(places))
		for i := 0; i < 500; i++ {
			b, events, points := randomBout(r)

			res, err := engine.Analyze(b, events)
			require.NoError(t, err)
			require.False(t, res.Inconsistent, "generated progressions are consistent")

			assert.True(t, res.TimeLeadingPct.Sum().Equal(hundred), "sum is %s", res.TimeLeadingPct.Sum())
			assert.False(t, res.TimeLeadingPct.A.IsNegative())
			assert.False(t, res.TimeLeadingPct.B.IsNegative())
			assert.False(t, res.TimeLeadingPct.Tied.IsNegative())
			assert.LessOrEqual(t, res.LongestRun.A, points.A)
			assert.LessOrEqual(t, res.LongestRun.B, points.B)
			assert.GreaterOrEqual(t, res.LeadChanges, 0)
			assert.InDelta(t, b.DurationSeconds, res.LeadingSeconds.A+res.LeadingSeconds.B+res.LeadingSeconds.Tied, 1e-9)

			if points.A+points.B == 0 {
				assert.Equal(t, "100", res.TimeLeadingPct.Tied.String())
				assert.Equal(t, 0, res.LeadChanges)
				assert.False(t, res.BounceBackSeconds.A.Defined)
				assert.False(t, res.BounceBackSeconds.B.Defined)
			}

			again, err := engine.Analyze(b, events)
			require.NoError(t, err)
			assert.Equal(t, res, again, "analysis is idempotent")
		}
	}
}

func TestAnalyze_OrderIndependent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	engine := analytics.New()

	for i := 0; i < 200; i++ {
		b, events, _ := randomBout(r)

		// Only events with distinct timestamps may be reordered freely.
		seen := map[float64]bool{}
		distinct := events[:0:0]
		for _, e := range events {
			if !seen[*e.ElapsedSeconds] {
				seen[*e.ElapsedSeconds] = true
				distinct = append(distinct, e)
			}
		}

		want, err := engine.Analyze(b, distinct)
		require.NoError(t, err)

		shuffled := append([]model.MatchEvent(nil), distinct...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := engine.Analyze(b, shuffled)
		require.NoError(t, err)

		assert.Equal(t, want.LeadChanges, got.LeadChanges)
		assert.Equal(t, want.LongestRun, got.LongestRun)
		assert.Equal(t, want.BounceBackSeconds, got.BounceBackSeconds)
		assert.True(t, want.TimeLeadingPct.Sum().Equal(got.TimeLeadingPct.Sum()))
	}
}
