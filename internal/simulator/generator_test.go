package simulator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/model"
	"github.com/okian/boutstats/internal/simulator"
)

func TestGenerator_ScenariosAreConsistent(t *testing.T) {
	engine := analytics.New()
	gen := simulator.NewGenerator(7, 30)

	for range 200 {
		sc := gen.Scenario()
		require.Greater(t, sc.Bout.DurationSeconds, 0.0)

		res, err := engine.Analyze(sc.Bout, sc.Events)
		require.NoError(t, err)
		assert.False(t, res.Inconsistent, "bout %s: %v", sc.Bout.BoutID, res.Issues)
		assert.True(t, res.TimeLeadingPct.Sum().Equal(decimal.NewFromInt(100)))

		points := sc.Points()
		assert.Equal(t, points.A+points.B, res.ScoreEvents)
		assert.LessOrEqual(t, res.LongestRun.A, points.A)
		assert.LessOrEqual(t, res.LongestRun.B, points.B)
	}
}

func TestGenerator_SeedIsReproducible(t *testing.T) {
	a := simulator.NewGenerator(42, 10).Scenario()
	b := simulator.NewGenerator(42, 10).Scenario()

	require.Equal(t, a.Bout.DurationSeconds, b.Bout.DurationSeconds)
	require.Len(t, b.Events, len(a.Events))
	for i := range a.Events {
		assert.Equal(t, a.Events[i].Kind, b.Events[i].Kind)
		assert.Equal(t, a.Events[i].Scorer, b.Events[i].Scorer)
		assert.Equal(t, a.Events[i].ElapsedSeconds, b.Events[i].ElapsedSeconds)
		assert.NotEqual(t, a.Events[i].EventID, b.Events[i].EventID)
	}
}

func TestScenario_Points(t *testing.T) {
	sc := simulator.Scenario{Events: []model.MatchEvent{
		{Kind: model.KindScore, Scorer: model.CompetitorA},
		{Kind: model.KindScore, Scorer: model.CompetitorA},
		{Kind: model.KindScore, Scorer: model.CompetitorB},
		{Kind: model.KindCard, Scorer: model.CompetitorB},
	}}

	assert.Equal(t, model.PerCompetitor{A: 2, B: 1}, sc.Points())
}
