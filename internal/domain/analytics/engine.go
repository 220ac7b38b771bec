// Package analytics derives bout statistics from a timeline of scoring and
// card events.
//
// The pipeline is a sequence of pure stages:
//
//	Normalize -> Partition -> {Leadership, RunsAndRecovery}
//
// Each stage takes an immutable input and returns a new value. An Engine holds
// only configuration, so a single Engine may be shared across goroutines.
package analytics

import "github.com/okian/boutstats/internal/domain/model"

// Engine computes AnalyticsResult values.
type Engine struct {
	precision       int32
	zeroLengthLeads bool
	bounceBack      BounceBackPolicy
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		precision:       defaultPrecision,
		zeroLengthLeads: true,
		bounceBack:      DeficitEvents,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Precision returns the configured number of decimal places for percentages.
func (e *Engine) Precision() int { return int(e.precision) }

// ZeroLengthLeads reports whether zero-length intervals count for lead changes.
func (e *Engine) ZeroLengthLeads() bool { return e.zeroLengthLeads }

// BounceBackPolicy returns the configured bounce-back policy.
func (e *Engine) BounceBackPolicy() BounceBackPolicy { return e.bounceBack }

// Options returns options that reproduce this engine's configuration.
func (e *Engine) Options() []Option {
	return []Option{
		WithPrecision(int(e.precision)),
		WithZeroLengthLeads(e.zeroLengthLeads),
		WithBounceBackPolicy(e.bounceBack),
	}
}

// Analyze runs the full pipeline for one bout. Events may be in any order.
// An error wrapping ErrInvalidInput means no result is available. Inconsistent
// score progressions do not fail; see AnalyticsResult.Inconsistent.
func (e *Engine) Analyze(bout model.Bout, events []model.MatchEvent) (model.AnalyticsResult, error) {
	tl, err := Normalize(bout.DurationSeconds, events)
	if err != nil {
		return model.AnalyticsResult{}, err
	}

	intervals := Partition(tl)
	lead := e.Leadership(intervals)
	runs := e.RunsAndRecovery(tl.Scores())

	return model.AnalyticsResult{
		TimeLeadingPct:    lead.Percentages,
		LeadingSeconds:    lead.Seconds,
		LeadChanges:       lead.LeadChanges,
		BounceBackSeconds: runs.BounceBack,
		LongestRun:        runs.LongestRun,
		ScoreEvents:       tl.ScoreCount(),
		CardEvents:        len(tl.Events) - tl.ScoreCount(),
		SkippedEvents:     tl.Skipped,
		Inconsistent:      len(tl.Issues) > 0,
		Issues:            tl.Issues,
	}, nil
}
