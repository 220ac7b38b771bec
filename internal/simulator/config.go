// Package simulator generates random bouts, plays them against a running
// service over HTTP and checks the returned analytics against a local run of
// the engine.
package simulator

import (
	"encoding/json"
	"runtime"
	"time"

	"github.com/okian/boutstats/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Bouts         int           // Number of bouts to generate
	Workers       int           // Number of concurrent HTTP workers
	Timeout       time.Duration // HTTP request timeout
	Seed          uint64        // Seed for bout generation and submission order
	MaxScores     int           // Upper bound on score events per bout
	DuplicateRate float64       // Share of events submitted a second time
	Verbose       bool          // Log every mismatch
}

// DefaultConfig returns the settings used by cmd/simulate.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:9080",
		Bouts:         200,
		Workers:       runtime.NumCPU() * 2,
		Timeout:       30 * time.Second,
		Seed:          1,
		MaxScores:     24,
		DuplicateRate: 0.1,
	}
}

// Scenario is a generated bout with its full event list.
type Scenario struct {
	Bout   model.Bout
	Events []model.MatchEvent
}

// Points returns the number of score events per competitor.
func (s Scenario) Points() model.PerCompetitor {
	var p model.PerCompetitor
	for _, e := range s.Events {
		if !e.IsScore() {
			continue
		}
		switch e.Scorer {
		case model.CompetitorA:
			p.A++
		case model.CompetitorB:
			p.B++
		}
	}
	return p
}

// BoutRequest is the body of POST /bouts.
type BoutRequest struct {
	BoutID          string  `json:"bout_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	CompetitorA     string  `json:"competitor_a,omitempty"`
	CompetitorB     string  `json:"competitor_b,omitempty"`
}

// EventRequest is the body of POST /bouts/{id}/events.
type EventRequest struct {
	EventID        string   `json:"event_id"`
	ElapsedSeconds *float64 `json:"elapsed_seconds,omitempty"`
	Kind           string   `json:"kind"`
	Scorer         string   `json:"scorer,omitempty"`
	ScoreDiffAfter *int     `json:"score_diff_after,omitempty"`
}

// AckResponse represents the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
	Version   uint64 `json:"version"`
	Queued    bool   `json:"queued"`
}

// AnalyticsResponse is the client view of GET /bouts/{id}/analytics.
type AnalyticsResponse struct {
	TimeLeadingPct struct {
		A    json.Number `json:"a"`
		B    json.Number `json:"b"`
		Tied json.Number `json:"tied"`
	} `json:"time_leading_pct"`
	LeadChanges       int `json:"lead_changes"`
	BounceBackSeconds struct {
		A *float64 `json:"a"`
		B *float64 `json:"b"`
	} `json:"bounce_back_seconds"`
	LongestRun struct {
		A int `json:"a"`
		B int `json:"b"`
	} `json:"longest_run"`
	ScoreEvents   int  `json:"score_events"`
	CardEvents    int  `json:"card_events"`
	SkippedEvents int  `json:"skipped_events"`
	Inconsistent  bool `json:"inconsistent"`
}

// Stats holds run statistics.
type Stats struct {
	BoutsGenerated  int
	BoutsRegistered int
	EventsSubmitted int
	EventsAccepted  int
	EventsDuplicate int
	EventsFailed    int
	BoutsVerified   int
	BoutsMismatched int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
