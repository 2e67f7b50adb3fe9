// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/metaboard/internal/adapters/repository"
	"github.com/okian/metaboard/internal/domain/model"
)

// EntityDependencies defines the interface for single-entity lookups.
type EntityDependencies interface {
	Entity(ctx context.Context, name string) (model.EnrichedRecord, error)
}

// EntityHandler handles entity lookup requests.
type EntityHandler struct {
	deps EntityDependencies
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(deps EntityDependencies) *EntityHandler {
	return &EntityHandler{deps: deps}
}

// HandleGetEntity handles GET /entity/{name} requests.
func (h *EntityHandler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_entity"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/entity/")
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Entity(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		case errors.Is(err, repository.ErrNoSnapshot):
			writeError(w, http.StatusServiceUnavailable, "no_snapshot", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
