// Package api exposes bout registration, event ingestion and analytics over
// JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/boutstats/pkg/logger"
)

const (
	maxBodyBytes        = 1 << 20
	maxComputeBodyBytes = 8 << 20
)

// Dependencies bundles everything the handlers need.
type Dependencies interface {
	BoutDependencies
	EventDependencies
	AnalyticsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	boutsHandler     *BoutsHandler
	eventsHandler    *EventsHandler
	analyticsHandler *AnalyticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		boutsHandler:     NewBoutsHandler(deps),
		eventsHandler:    NewEventsHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /bouts", MetricsMiddleware(s.boutsHandler.HandleCreateBout, "bouts"))
	mux.HandleFunc("GET /bouts/{id}", MetricsMiddleware(s.boutsHandler.HandleGetBout, "bout"))
	mux.HandleFunc("POST /bouts/{id}/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("GET /bouts/{id}/analytics", MetricsMiddleware(s.analyticsHandler.HandleGetAnalytics, "analytics"))
	mux.HandleFunc("POST /analytics", MetricsMiddleware(s.analyticsHandler.HandleCompute, "compute"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError picks the status from the error kind. 5xx causes are logged.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed", logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(v)
}

// boutID returns the {id} path value.
func boutID(r *http.Request) string { return r.PathValue("id") }
