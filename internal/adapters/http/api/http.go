// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/metaboard/internal/adapters/mq/queue"
	"github.com/okian/metaboard/internal/adapters/repository"
	"github.com/okian/metaboard/internal/domain/dedupe"
	"github.com/okian/metaboard/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async ingestion. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, s queue.Submission) bool

	// Read operations over the published snapshot.
	Page(ctx context.Context, q repository.Query) ([]model.EnrichedRecord, int, error)
	Entity(ctx context.Context, name string) (model.EnrichedRecord, error)

	// Recompute rebuilds the snapshot from the current dataset.
	Recompute(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	recordsHandler     *RecordsHandler
	leaderboardHandler *LeaderboardHandler
	entityHandler      *EntityHandler
	recomputeHandler   *RecomputeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxPageSize, defaultPageSize int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		recordsHandler:     NewRecordsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxPageSize, defaultPageSize),
		entityHandler:      NewEntityHandler(deps),
		recomputeHandler:   NewRecomputeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandlePostRecord, "records"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/entity/", MetricsMiddleware(s.entityHandler.HandleGetEntity, "entity"))
	mux.HandleFunc("/recompute", MetricsMiddleware(s.recomputeHandler.HandleRecompute, "recompute"))
}

// recordRequest mirrors the JSON schema for POST /records.
type recordRequest struct {
	RecordID string `json:"record_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Ties     int    `json:"ties"`
}

func (r recordRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("missing name")
	}
	raw := r.record()
	if err := raw.Validate(); err != nil {
		return err
	}
	return nil
}

func (r recordRequest) record() model.RawRecord {
	return model.RawRecord{
		Name:   strings.TrimSpace(r.Name),
		Count:  r.Count,
		Wins:   r.Wins,
		Losses: r.Losses,
		Ties:   r.Ties,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	RecordID  string `json:"record_id"`
	Duplicate bool   `json:"duplicate"`
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
