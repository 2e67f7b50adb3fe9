// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/metaboard/internal/domain/model"
	"github.com/okian/metaboard/internal/domain/pipeline"
)

// RecomputeDependencies defines the interface for triggering a recompute.
type RecomputeDependencies interface {
	Recompute(ctx context.Context) error
}

// RecomputeHandler handles on-demand snapshot rebuilds.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

// HandleRecompute handles POST /recompute requests. A failed recompute
// leaves the previous snapshot published and reports why.
func (h *RecomputeHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Recompute(r.Context()); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyPopulation):
			writeError(w, http.StatusConflict, "empty_population", Wrap(op, err))
		case errors.Is(err, model.ErrDegenerateRecord):
			writeError(w, http.StatusConflict, "degenerate_record", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
}
