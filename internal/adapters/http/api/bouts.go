package api

import (
	"context"
	"net/http"

	"github.com/okian/boutstats/internal/domain/model"
)

// BoutDependencies defines what the bout handlers need.
type BoutDependencies interface {
	RegisterBout(ctx context.Context, bout model.Bout) (model.Bout, error)
	Bout(ctx context.Context, boutID string) (model.Bout, error)
}

// BoutsHandler handles bout registration and lookup.
type BoutsHandler struct {
	deps BoutDependencies
}

// NewBoutsHandler creates a new bouts handler.
func NewBoutsHandler(deps BoutDependencies) *BoutsHandler {
	return &BoutsHandler{deps: deps}
}

// HandleCreateBout handles POST /bouts requests.
func (h *BoutsHandler) HandleCreateBout(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_bout"
	var req boutRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	bout, err := h.deps.RegisterBout(r.Context(), req.toModel())
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, newBoutResponse(bout))
}

// HandleGetBout handles GET /bouts/{id} requests.
func (h *BoutsHandler) HandleGetBout(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_bout"
	bout, err := h.deps.Bout(r.Context(), boutID(r))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newBoutResponse(bout))
}
