// Package model contains domain models passed between layers.
package model

import "strings"

// Competitor identifies one side of a two-competitor bout.
type Competitor uint8

// Competitor values. CompetitorNone is the zero value and marks a missing scorer.
const (
	CompetitorNone Competitor = iota
	CompetitorA
	CompetitorB
)

// String returns the wire name of the competitor ("a", "b" or "").
func (c Competitor) String() string {
	switch c {
	case CompetitorA:
		return "a"
	case CompetitorB:
		return "b"
	default:
		return ""
	}
}

// Opponent returns the other competitor. CompetitorNone maps to itself.
func (c Competitor) Opponent() Competitor {
	switch c {
	case CompetitorA:
		return CompetitorB
	case CompetitorB:
		return CompetitorA
	default:
		return CompetitorNone
	}
}

// ParseCompetitor accepts "a"/"b" in any case; anything else yields CompetitorNone.
func ParseCompetitor(s string) Competitor {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return CompetitorA
	case "b":
		return CompetitorB
	default:
		return CompetitorNone
	}
}

// EventKind classifies a timeline event.
type EventKind string

// Supported event kinds.
const (
	KindScore EventKind = "score"
	KindCard  EventKind = "card"
)

// ParseEventKind normalizes case and whitespace. Unknown kinds are returned as-is
// so validation can report them.
func ParseEventKind(s string) EventKind {
	return EventKind(strings.ToLower(strings.TrimSpace(s)))
}

// MatchEvent is a single recorded bout event. It is treated as immutable once
// recorded; optional fields are pointers so "absent" is distinguishable from zero.
type MatchEvent struct {
	EventID        string     // client supplied id, used for idempotency
	ElapsedSeconds *float64   // seconds since bout start; nil excludes the event from analysis
	Kind           EventKind  // score or card
	Scorer         Competitor // SCORE only
	ScoreDiffAfter *int       // SCORE only: A's score minus B's score after this event
}

// IsScore reports whether the event changes the score.
func (e MatchEvent) IsScore() bool { return e.Kind == KindScore }

// Bout describes a single timed match between two competitors.
type Bout struct {
	BoutID          string
	DurationSeconds float64
	CompetitorA     string
	CompetitorB     string
}

// Float64 returns a pointer to v. Handy for building events.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v. Handy for building events.
func Int(v int) *int { return &v }

// Submission is the receipt for an event handed to ingestion.
type Submission struct {
	EventID   string
	Version   uint64 // event log version after the append; 0 for duplicates
	Duplicate bool
	// Queued is false when the recompute queue was full or not running; the
	// result is then computed on the next read.
	Queued bool
}
