package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/okian/boutstats/internal/domain/model"
)

// Generator produces bouts with consistent score progressions. It is not safe
// for concurrent use.
type Generator struct {
	rng       *rand.Rand
	maxScores int
}

// NewGenerator creates a generator seeded for reproducible timelines.
func NewGenerator(seed uint64, maxScores int) *Generator {
	// The shortest bout has 601 distinct tenth-of-a-second slots.
	maxScores = min(max(maxScores, 1), 500)
	return &Generator{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxScores: maxScores,
	}
}

// Scenario generates one bout. Scores happen at distinct times and step the differential by exactly one
// point toward the scorer. Cards fall anywhere in the bout, and some carry no
// timestamp.
func (g *Generator) Scenario() Scenario {
	duration := float64(60 * (1 + g.rng.IntN(5)))
	bout := model.Bout{
		BoutID:          uuid.NewString(),
		DurationSeconds: duration,
		CompetitorA:     fmt.Sprintf("red-%03d", g.rng.IntN(1000)),
		CompetitorB:     fmt.Sprintf("blue-%03d", g.rng.IntN(1000)),
	}

	// Score times are distinct so the progression does not depend on the
	// order events reach the service.
	n := g.rng.IntN(g.maxScores + 1)
	seen := make(map[float64]struct{}, n)
	times := make([]float64, 0, n)
	for len(times) < n {
		t := g.timestamp(duration)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	slices.Sort(times)

	events := make([]model.MatchEvent, 0, len(times)+4)
	diff := 0
	for _, t := range times {
		scorer := model.CompetitorA
		if g.rng.IntN(2) == 1 {
			scorer = model.CompetitorB
		}
		if scorer == model.CompetitorA {
			diff++
		} else {
			diff--
		}
		events = append(events, model.MatchEvent{
			EventID:        uuid.NewString(),
			ElapsedSeconds: model.Float64(t),
			Kind:           model.KindScore,
			Scorer:         scorer,
			ScoreDiffAfter: model.Int(diff),
		})
	}

	for range g.rng.IntN(4) {
		card := model.MatchEvent{EventID: uuid.NewString(), Kind: model.KindCard}
		if g.rng.IntN(5) > 0 {
			card.ElapsedSeconds = model.Float64(g.timestamp(duration))
		}
		events = append(events, card)
	}

	return Scenario{Bout: bout, Events: events}
}

// timestamp returns a time in [0, duration] at tenth-of-a-second resolution.
func (g *Generator) timestamp(duration float64) float64 {
	return math.Min(duration, math.Round(g.rng.Float64()*duration*10)/10)
}

// Shuffle permutes s in place using the generator's source.
func Shuffle[T any](g *Generator, s []T) {
	g.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// Chance reports true with probability p.
func (g *Generator) Chance(p float64) bool { return g.rng.Float64() < p }

func toBoutRequest(b model.Bout) BoutRequest {
	return BoutRequest{
		BoutID:          b.BoutID,
		DurationSeconds: b.DurationSeconds,
		CompetitorA:     b.CompetitorA,
		CompetitorB:     b.CompetitorB,
	}
}

func toEventRequest(e model.MatchEvent) EventRequest {
	return EventRequest{
		EventID:        e.EventID,
		ElapsedSeconds: e.ElapsedSeconds,
		Kind:           string(e.Kind),
		Scorer:         e.Scorer.String(),
		ScoreDiffAfter: e.ScoreDiffAfter,
	}
}
