package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/metaboard/internal/adapters/http/api"
	"github.com/okian/metaboard/internal/adapters/storage"
	app "github.com/okian/metaboard/internal/app"
	"github.com/okian/metaboard/internal/config"
	"github.com/okian/metaboard/internal/domain/bayes"
	"github.com/okian/metaboard/internal/domain/display"
	"github.com/okian/metaboard/internal/domain/pipeline"
	"github.com/okian/metaboard/internal/domain/tier"
	"github.com/okian/metaboard/pkg/logger"
	"github.com/okian/metaboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the system metrics updater below collects its own.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithRecomputeInterval(time.Duration(cfg.RecomputeIntervalMS)*time.Millisecond),
		app.WithPipeline(pipelineFromConfig(cfg)),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	if err := seedDataset(ctx, cfg, svc, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "dataset seed failed", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.MaxPageSize, cfg.DefaultPageSize)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// pipelineFromConfig assembles the enrichment pipeline from the rating,
// tier and display settings.
func pipelineFromConfig(cfg *config.Config) *pipeline.Pipeline {
	engineOpts := []bayes.Option{
		bayes.WithScale(cfg.RatingScale),
		bayes.WithMetaReferenceSize(cfg.MetaReferenceSize),
		bayes.WithSmallMetaInflation(cfg.SmallMetaInflation),
	}
	if len(cfg.ZBreakpoints) > 0 {
		engineOpts = append(engineOpts, bayes.WithBreakpoints(cfg.ZBreakpoints))
	}

	classifierOpts := []tier.Option{}
	if len(cfg.TierLadder) > 0 {
		classifierOpts = append(classifierOpts, tier.WithLadder(cfg.TierLadder))
	}

	formatterOpts := []display.Option{
		display.WithKiloThreshold(cfg.KiloThreshold),
	}
	if len(cfg.DisplayIntervals) > 0 {
		formatterOpts = append(formatterOpts, display.WithIntervals(cfg.DisplayIntervals))
	}

	return pipeline.New(
		pipeline.WithEngine(bayes.NewEngine(engineOpts...)),
		pipeline.WithClassifier(tier.NewClassifier(classifierOpts...)),
		pipeline.WithFormatter(display.NewFormatter(formatterOpts...)),
	)
}

// seedDataset loads a startup dataset from the configured JSON file or
// SQLite database, if any.
func seedDataset(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	switch {
	case cfg.DatasetJSON != "":
		records, err := storage.LoadJSON(cfg.DatasetJSON)
		if err != nil {
			return err
		}
		accepted, err := svc.Seed(ctx, records)
		if err != nil {
			return err
		}
		log.Info(ctx, "seeded dataset from JSON",
			logger.String("path", cfg.DatasetJSON),
			logger.Int("accepted", accepted),
		)
	case cfg.DatasetDB != "":
		db, err := storage.Open(cfg.DatasetDB)
		if err != nil {
			return err
		}
		defer db.Close()
		records, err := db.LoadRecords(ctx)
		if err != nil {
			return err
		}
		accepted, err := svc.Seed(ctx, records)
		if err != nil {
			return err
		}
		log.Info(ctx, "seeded dataset from SQLite",
			logger.String("path", cfg.DatasetDB),
			logger.Int("accepted", accepted),
		)
	}
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if datasetSize, ok := stats["datasetSize"].(int); ok {
		metrics.UpdatePopulationSize(datasetSize)
	}
}
