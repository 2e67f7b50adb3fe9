// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/metaboard/internal/adapters/repository"
	"github.com/okian/metaboard/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard queries.
type LeaderboardDependencies interface {
	Page(ctx context.Context, q repository.Query) ([]model.EnrichedRecord, int, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	maxLimit     int
	defaultLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		maxLimit:     maxLimit,
		defaultLimit: defaultLimit,
	}
}

// pageResponse wraps one leaderboard page with pagination totals.
type pageResponse struct {
	Entries []model.EnrichedRecord `json:"entries"`
	Total   int                    `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	At      time.Time              `json:"at"`
}

// HandleGetLeaderboard handles
// GET /leaderboard?limit=N&offset=M&sort=metric&tier=T&q=substr requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params := r.URL.Query()

	limit := h.defaultLimit
	if s := params.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	offset := 0
	if s := params.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		offset = n
	}

	sortKey := model.MetricRating
	if s := params.Get("sort"); s != "" {
		m, err := model.ParseMetric(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		sortKey = m
	}

	q := repository.Query{
		Limit:  limit,
		Offset: offset,
		Sort:   sortKey,
		Tier:   params.Get("tier"),
		Name:   params.Get("q"),
	}
	entries, total, err := h.deps.Page(r.Context(), q)
	if err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, "no_snapshot", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		At:      time.Now().UTC(),
	})
}
