package api

import (
	"context"
	"net/http"

	"github.com/okian/boutstats/internal/domain/model"
)

// EventDependencies defines the interface for event ingestion.
type EventDependencies interface {
	SubmitEvent(ctx context.Context, boutID string, ev model.MatchEvent) (model.Submission, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandlePostEvent handles POST /bouts/{id}/events requests. New events are
// answered with 202, replays of a known event id with 200.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.SubmitEvent(r.Context(), boutID(r), req.toModel())
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, newAckResponse(sub))
		return
	}
	writeJSON(w, http.StatusAccepted, newAckResponse(sub))
}
