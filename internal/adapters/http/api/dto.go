package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/okian/boutstats/internal/domain/model"
)

// boutRequest mirrors the OpenAPI schema for POST /bouts.
type boutRequest struct {
	BoutID          string  `json:"bout_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	CompetitorA     string  `json:"competitor_a"`
	CompetitorB     string  `json:"competitor_b"`
}

func (b boutRequest) toModel() model.Bout {
	return model.Bout{
		BoutID:          b.BoutID,
		DurationSeconds: b.DurationSeconds,
		CompetitorA:     b.CompetitorA,
		CompetitorB:     b.CompetitorB,
	}
}

type boutResponse struct {
	BoutID          string  `json:"bout_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	CompetitorA     string  `json:"competitor_a,omitempty"`
	CompetitorB     string  `json:"competitor_b,omitempty"`
}

func newBoutResponse(b model.Bout) boutResponse {
	return boutResponse{
		BoutID:          b.BoutID,
		DurationSeconds: b.DurationSeconds,
		CompetitorA:     b.CompetitorA,
		CompetitorB:     b.CompetitorB,
	}
}

// eventRequest mirrors the OpenAPI schema for POST /bouts/{id}/events.
// Optional fields are pointers so absent and zero differ.
type eventRequest struct {
	EventID        string   `json:"event_id"`
	ElapsedSeconds *float64 `json:"elapsed_seconds"`
	Kind           string   `json:"kind"`
	Scorer         string   `json:"scorer"`
	ScoreDiffAfter *int     `json:"score_diff_after"`
}

func (e eventRequest) toModel() model.MatchEvent {
	return model.MatchEvent{
		EventID:        e.EventID,
		ElapsedSeconds: e.ElapsedSeconds,
		Kind:           model.ParseEventKind(e.Kind),
		Scorer:         model.ParseCompetitor(e.Scorer),
		ScoreDiffAfter: e.ScoreDiffAfter,
	}
}

// computeRequest is the body of POST /analytics.
type computeRequest struct {
	Bout   boutRequest    `json:"bout"`
	Events []eventRequest `json:"events"`
}

func (c computeRequest) toModel() (model.Bout, []model.MatchEvent) {
	events := make([]model.MatchEvent, len(c.Events))
	for i, e := range c.Events {
		events[i] = e.toModel()
	}
	return c.Bout.toModel(), events
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
	Version   uint64 `json:"version,omitempty"`
	Queued    bool   `json:"queued"`
}

func newAckResponse(s model.Submission) ackResponse {
	status := "accepted"
	if s.Duplicate {
		status = "duplicate"
	}
	return ackResponse{
		Status:    status,
		EventID:   s.EventID,
		Duplicate: s.Duplicate,
		Version:   s.Version,
		Queued:    s.Queued,
	}
}

type percentResponse struct {
	A    json.Number `json:"a"`
	B    json.Number `json:"b"`
	Tied json.Number `json:"tied"`
}

type secondsResponse struct {
	A    float64 `json:"a"`
	B    float64 `json:"b"`
	Tied float64 `json:"tied"`
}

// recoveryResponse uses null for a competitor that never fell behind and
// scored again.
type recoveryResponse struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

type pairResponse struct {
	A int `json:"a"`
	B int `json:"b"`
}

type issueResponse struct {
	Index    int     `json:"index"`
	EventID  string  `json:"event_id,omitempty"`
	Elapsed  float64 `json:"elapsed_seconds"`
	Kind     string  `json:"kind"`
	PrevDiff int     `json:"prev_diff"`
	Diff     int     `json:"diff"`
}

type analyticsResponse struct {
	BoutID            string           `json:"bout_id,omitempty"`
	TimeLeadingPct    percentResponse  `json:"time_leading_pct"`
	LeadingSeconds    secondsResponse  `json:"leading_seconds"`
	LeadChanges       int              `json:"lead_changes"`
	BounceBackSeconds recoveryResponse `json:"bounce_back_seconds"`
	LongestRun        pairResponse     `json:"longest_run"`
	ScoreEvents       int              `json:"score_events"`
	CardEvents        int              `json:"card_events"`
	SkippedEvents     int              `json:"skipped_events"`
	Inconsistent      bool             `json:"inconsistent"`
	Issues            []issueResponse  `json:"issues"`
}

func newAnalyticsResponse(boutID string, r model.AnalyticsResult) analyticsResponse {
	issues := make([]issueResponse, len(r.Issues))
	for i, is := range r.Issues {
		issues[i] = issueResponse{
			Index:    is.Index,
			EventID:  is.EventID,
			Elapsed:  is.Elapsed,
			Kind:     string(is.Kind),
			PrevDiff: is.PrevDiff,
			Diff:     is.Diff,
		}
	}
	return analyticsResponse{
		BoutID: boutID,
		TimeLeadingPct: percentResponse{
			A:    number(r.TimeLeadingPct.A),
			B:    number(r.TimeLeadingPct.B),
			Tied: number(r.TimeLeadingPct.Tied),
		},
		LeadingSeconds: secondsResponse{
			A:    r.LeadingSeconds.A,
			B:    r.LeadingSeconds.B,
			Tied: r.LeadingSeconds.Tied,
		},
		LeadChanges: r.LeadChanges,
		BounceBackSeconds: recoveryResponse{
			A: seconds(r.BounceBackSeconds.A),
			B: seconds(r.BounceBackSeconds.B),
		},
		LongestRun:    pairResponse{A: r.LongestRun.A, B: r.LongestRun.B},
		ScoreEvents:   r.ScoreEvents,
		CardEvents:    r.CardEvents,
		SkippedEvents: r.SkippedEvents,
		Inconsistent:  r.Inconsistent,
		Issues:        issues,
	}
}

// number writes a decimal as an unquoted JSON number with no binary rounding.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func seconds(r model.Recovery) *float64 {
	if !r.Defined {
		return nil
	}
	v := r.Seconds
	return &v
}
