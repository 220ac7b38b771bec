package model

import "github.com/shopspring/decimal"

// Leader is the side ahead during an interval.
type Leader uint8

// Leader values.
const (
	LeaderTied Leader = iota
	LeaderA
	LeaderB
)

// String returns the wire name of the leader.
func (l Leader) String() string {
	switch l {
	case LeaderA:
		return "a"
	case LeaderB:
		return "b"
	default:
		return "tied"
	}
}

// LeaderFromDiff maps a score differential (A minus B) to a leader.
func LeaderFromDiff(diff int) Leader {
	switch {
	case diff > 0:
		return LeaderA
	case diff < 0:
		return LeaderB
	default:
		return LeaderTied
	}
}

// Interval is a half-open span [Start, End) with a constant leader.
// Zero-length intervals (Start == End) are allowed.
type Interval struct {
	Start  float64
	End    float64
	Leader Leader
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Percentages holds the share of bout time per leader. A + B + Tied is exactly 100.
type Percentages struct {
	A    decimal.Decimal
	B    decimal.Decimal
	Tied decimal.Decimal
}

// Sum returns A + B + Tied.
func (p Percentages) Sum() decimal.Decimal { return p.A.Add(p.B).Add(p.Tied) }

// LeaderSeconds holds raw accumulated seconds per leader.
type LeaderSeconds struct {
	A    float64
	B    float64
	Tied float64
}

// PerCompetitor holds an integer statistic for each competitor.
type PerCompetitor struct {
	A int
	B int
}

// Get returns the value for c. CompetitorNone yields 0.
func (p PerCompetitor) Get(c Competitor) int {
	switch c {
	case CompetitorA:
		return p.A
	case CompetitorB:
		return p.B
	default:
		return 0
	}
}

// Recovery is an average bounce-back latency. Defined is false when the
// competitor never fell behind and scored again; Seconds is then meaningless.
type Recovery struct {
	Seconds     float64
	Occurrences int
	Defined     bool
}

// Undefined is the Recovery sentinel for "never fell behind and scored again".
var Undefined = Recovery{}

// BounceBack holds Recovery per competitor.
type BounceBack struct {
	A Recovery
	B Recovery
}

// IssueKind names a score progression inconsistency.
type IssueKind string

// Issue kinds.
const (
	IssueNonUnitStep    IssueKind = "non_unit_step"
	IssueScorerMismatch IssueKind = "scorer_mismatch"
)

// Issue records one inconsistent SCORE event. Index refers to the position in
// the normalized timeline.
type Issue struct {
	Index    int
	EventID  string
	Elapsed  float64
	Kind     IssueKind
	PrevDiff int
	Diff     int
}

// AnalyticsResult is the immutable output of a timeline analysis.
type AnalyticsResult struct {
	TimeLeadingPct    Percentages
	LeadingSeconds    LeaderSeconds
	LeadChanges       int
	BounceBackSeconds BounceBack
	LongestRun        PerCompetitor
	ScoreEvents       int
	CardEvents        int
	SkippedEvents     int

	// Inconsistent is set when the score progression had non-unit steps or
	// scorer mismatches. The statistics still use the reported differentials.
	Inconsistent bool
	Issues       []Issue
}
