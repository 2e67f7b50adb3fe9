// Package app provides the core business service that implements the
// dependencies required by the HTTP API: ingestion through the queue and
// worker pool, and snapshot recomputation through the pipeline.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/metaboard/internal/adapters/mq/queue"
	workerpool "github.com/okian/metaboard/internal/adapters/mq/worker"
	"github.com/okian/metaboard/internal/adapters/repository"
	"github.com/okian/metaboard/internal/domain/dedupe"
	"github.com/okian/metaboard/internal/domain/model"
	"github.com/okian/metaboard/internal/domain/pipeline"
	"github.com/okian/metaboard/pkg/logger"
	"github.com/okian/metaboard/pkg/metrics"
)

// Service implements the API dependencies for the metagame leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	dataset   *repository.Dataset
	snapshots *repository.SnapshotStore
	deduper   dedupe.Deduper
	queue     queue.Queue
	pool      *workerpool.Pool
	pipe      *pipeline.Pipeline

	// Configuration
	workerCount       int
	queueSize         int
	dedupeSize        int
	recomputeInterval time.Duration

	// State
	started          bool
	stopCh           chan struct{}
	publishedVersion uint64
	recomputeMu      sync.Mutex

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRecomputeInterval sets how often a dirty dataset triggers an
// automatic snapshot recompute. Zero disables the background loop.
func WithRecomputeInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.recomputeInterval = interval
		}
	}
}

// WithPipeline sets a custom enrichment pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Service) {
		if p != nil {
			s.pipe = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU() * 4,
		queueSize:         100_000,
		dedupeSize:        500_000,
		recomputeInterval: 5 * time.Second,
		pipe:              pipeline.New(),
		stopCh:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	return s
}

// Start wires the components and launches the workers and the recompute
// loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("service already started")
	}

	s.dataset = repository.NewDataset()
	s.snapshots = repository.NewSnapshotStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.dataset)
	s.pool.Start(ctx)

	if s.recomputeInterval > 0 {
		go s.recomputeLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Duration("recompute_interval", s.recomputeInterval),
	)
	return nil
}

// Stop drains the workers and closes the queue.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	close(s.stopCh)
	if err := s.pool.Shutdown(context.Background()); err != nil {
		s.logger.Error(context.Background(), "worker pool shutdown failed", logger.Error(err))
	}
	s.started = false
}

// Seed bulk-loads records into the dataset and recomputes the snapshot.
// Used for startup datasets (JSON file, SQLite).
func (s *Service) Seed(ctx context.Context, records []model.RawRecord) (int, error) {
	accepted := s.dataset.Seed(ctx, records)
	if accepted == 0 {
		return 0, nil
	}
	if err := s.Recompute(ctx); err != nil {
		return accepted, err
	}
	return accepted, nil
}

// SeenAndRecord implements dedupe.Deduper.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordDuplicate()
	}
	return seen
}

// Unrecord implements dedupe.Deduper.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size implements dedupe.Deduper.
func (s *Service) Size() int {
	return s.deduper.Size()
}

// Enqueue pushes a submission for async ingestion.
func (s *Service) Enqueue(ctx context.Context, sub queue.Submission) bool {
	return s.queue.Enqueue(ctx, sub)
}

// Page serves one leaderboard page from the published snapshot.
func (s *Service) Page(ctx context.Context, q repository.Query) ([]model.EnrichedRecord, int, error) {
	return s.snapshots.Page(ctx, q)
}

// Entity serves one enriched record from the published snapshot.
func (s *Service) Entity(ctx context.Context, name string) (model.EnrichedRecord, error) {
	return s.snapshots.Entity(ctx, name)
}

// Recompute runs the pipeline over the current dataset and publishes the
// result. On failure the previous snapshot stays published. Concurrent
// calls serialize; each run is deterministic for a given dataset version.
func (s *Service) Recompute(ctx context.Context) error {
	s.recomputeMu.Lock()
	defer s.recomputeMu.Unlock()

	version := s.dataset.Version()
	raw := s.dataset.All(ctx)

	start := time.Now()
	res, err := s.pipe.Run(ctx, raw)
	if err != nil {
		metrics.RecordRecomputeError()
		s.logger.Warn(ctx, "recompute failed; keeping previous snapshot",
			logger.Int("dataset_size", len(raw)),
			logger.Error(err),
		)
		return err
	}

	snap := repository.NewSnapshot(
		uuid.NewString(),
		time.Now().UTC(),
		version,
		res.Prior,
		res.Records,
		res.TotalCount,
		res.TotalMatches,
	)
	s.snapshots.Publish(ctx, snap)
	s.setPublishedVersion(version)

	elapsed := time.Since(start)
	metrics.ObserveRecompute(float64(elapsed.Milliseconds()))
	metrics.UpdatePopulationSize(len(res.Records))
	metrics.UpdateSnapshotUnix(snap.ComputedAt.Unix())
	if counts, err := s.snapshots.TierCounts(ctx); err == nil {
		for t, c := range counts {
			metrics.UpdateTierPopulation(t, c)
		}
	}

	s.logger.Info(ctx, "snapshot published",
		logger.String("snapshot_id", snap.ID),
		logger.Int("population", len(res.Records)),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

// recomputeLoop periodically rebuilds the snapshot when the dataset has
// changed since the last publication.
func (s *Service) recomputeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.recomputeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if s.dataset.Version() == s.getPublishedVersion() {
				continue
			}
			if err := s.Recompute(ctx); err != nil {
				// Already logged; the loop retries on the next tick.
				continue
			}
		}
	}
}

func (s *Service) setPublishedVersion(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishedVersion = v
}

func (s *Service) getPublishedVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publishedVersion
}

// GetStats returns service statistics for the /stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stats := map[string]interface{}{
		"datasetSize": s.dataset.Len(ctx),
		"queueLength": s.queue.Len(ctx),
		"workerCount": s.pool.Size(),
		"dedupeSize":  s.deduper.Size(),
	}

	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		stats["snapshot"] = nil
		return stats
	}

	stats["snapshot"] = map[string]interface{}{
		"id":             snap.ID,
		"computedAt":     snap.ComputedAt,
		"datasetVersion": snap.DatasetVersion,
		"population":     len(snap.Records),
		"totalCount":     snap.TotalCount,
		"totalMatches":   snap.TotalMatches,
		"priorMean":      snap.Prior.Mean,
		"priorVariance":  snap.Prior.Variance,
		"priorAlpha":     snap.Prior.Alpha,
		"priorBeta":      snap.Prior.Beta,
	}
	if counts, err := s.snapshots.TierCounts(ctx); err == nil {
		stats["tiers"] = counts
	}
	return stats
}
