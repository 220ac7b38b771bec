package simulator_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/model"
	"github.com/okian/boutstats/internal/simulator"
)

func scenario() simulator.Scenario {
	return simulator.Scenario{
		Bout: model.Bout{BoutID: "b1", DurationSeconds: 100},
		Events: []model.MatchEvent{
			{ElapsedSeconds: model.Float64(20), Kind: model.KindScore, Scorer: model.CompetitorB, ScoreDiffAfter: model.Int(-1)},
			{ElapsedSeconds: model.Float64(60), Kind: model.KindScore, Scorer: model.CompetitorA, ScoreDiffAfter: model.Int(0)},
		},
	}
}

// served renders res through JSON the way the API does.
func served(t *testing.T, res model.AnalyticsResult) simulator.AnalyticsResponse {
	t.Helper()
	var got simulator.AnalyticsResponse
	got.TimeLeadingPct.A = json.Number(res.TimeLeadingPct.A.String())
	got.TimeLeadingPct.B = json.Number(res.TimeLeadingPct.B.String())
	got.TimeLeadingPct.Tied = json.Number(res.TimeLeadingPct.Tied.String())
	got.LeadChanges = res.LeadChanges
	if res.BounceBackSeconds.A.Defined {
		v := res.BounceBackSeconds.A.Seconds
		got.BounceBackSeconds.A = &v
	}
	if res.BounceBackSeconds.B.Defined {
		v := res.BounceBackSeconds.B.Seconds
		got.BounceBackSeconds.B = &v
	}
	got.LongestRun.A = res.LongestRun.A
	got.LongestRun.B = res.LongestRun.B
	got.ScoreEvents = res.ScoreEvents
	got.CardEvents = res.CardEvents
	got.SkippedEvents = res.SkippedEvents
	got.Inconsistent = res.Inconsistent
	return got
}

func TestVerify(t *testing.T) {
	sc := scenario()
	want, err := analytics.New().Analyze(sc.Bout, sc.Events)
	require.NoError(t, err)

	t.Run("matching result", func(t *testing.T) {
		assert.Empty(t, simulator.Verify(sc, want, served(t, want)))
	})

	t.Run("percentages off and not summing to 100", func(t *testing.T) {
		got := served(t, want)
		got.TimeLeadingPct.Tied = "59"
		problems := simulator.Verify(sc, want, got)
		assert.Len(t, problems, 2)
		assert.Contains(t, problems[1], "sums to 99")
	})

	t.Run("recovery reported for the wrong side", func(t *testing.T) {
		got := served(t, want)
		v := 3.0
		got.BounceBackSeconds.B = &v
		got.BounceBackSeconds.A = nil
		assert.Len(t, simulator.Verify(sc, want, got), 2)
	})

	t.Run("run longer than points scored", func(t *testing.T) {
		got := served(t, want)
		got.LongestRun.A = 5
		problems := simulator.Verify(sc, want, got)
		assert.Len(t, problems, 2)
		assert.Contains(t, problems[1], "exceeds points scored")
	})

	t.Run("garbage number", func(t *testing.T) {
		got := served(t, want)
		got.TimeLeadingPct.B = "forty"
		assert.NotEmpty(t, simulator.Verify(sc, want, got))
	})
}
