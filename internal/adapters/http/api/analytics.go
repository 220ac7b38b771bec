package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/model"
)

// AnalyticsDependencies defines what the analytics handlers need.
type AnalyticsDependencies interface {
	Analytics(ctx context.Context, boutID string) (model.AnalyticsResult, error)
	Compute(ctx context.Context, bout model.Bout, events []model.MatchEvent) (model.AnalyticsResult, error)
}

// AnalyticsHandler serves bout statistics.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleGetAnalytics handles GET /bouts/{id}/analytics requests.
func (h *AnalyticsHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analytics"
	id := boutID(r)
	res, err := h.deps.Analytics(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, wrapAnalysis(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newAnalyticsResponse(id, res))
}

// HandleCompute handles POST /analytics requests: analysis of a bout sent in
// the body, with nothing stored.
func (h *AnalyticsHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute"
	var req computeRequest
	if err := decodeJSON(w, r, maxComputeBodyBytes, &req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	bout, events := req.toModel()
	res, err := h.deps.Compute(r.Context(), bout, events)
	if err != nil {
		writeError(r.Context(), w, wrapAnalysis(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newAnalyticsResponse(bout.BoutID, res))
}

// wrapAnalysis reports invalid input to the engine as unprocessable rather
// than a malformed request.
func wrapAnalysis(op string, err error) error {
	if errors.Is(err, analytics.ErrInvalidInput) {
		return WrapKind(op, ErrUnprocessable, err)
	}
	return Wrap(op, err)
}
