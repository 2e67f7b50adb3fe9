// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/metaboard/internal/adapters/mq/queue"
	"github.com/okian/metaboard/internal/domain/dedupe"
)

// RecordDependencies defines the interface for record ingestion.
type RecordDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, s queue.Submission) bool
}

// RecordsHandler handles record submissions.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandlePostRecord handles POST /records requests.
func (h *RecordsHandler) HandlePostRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_record"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Submitters may omit the id; one is assigned so retries of the same
	// payload with an explicit id stay idempotent.
	id := req.RecordID
	if id == "" {
		id = uuid.NewString()
	}

	// Idempotency check - mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), id) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RecordID: id, Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), queue.Submission{ID: id, Record: req.record()}); !ok {
		// Roll back the "seen" status since enqueue failed.
		h.deps.Unrecord(r.Context(), id)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RecordID: id})
}
