// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load(...) to layer
//   file and environment sources on top.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"

	"github.com/okian/metaboard/internal/domain/bayes"
	"github.com/okian/metaboard/internal/domain/display"
	"github.com/okian/metaboard/internal/domain/tier"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the record-id dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxPageSize caps GET /leaderboard?limit.
	MaxPageSize int `koanf:"max_page_size"`

	// DefaultPageSize is the page size when the client gives none.
	DefaultPageSize int `koanf:"default_page_size"`

	// RecomputeIntervalMS is how often a dirty dataset triggers an
	// automatic snapshot recompute. Zero disables the background loop.
	RecomputeIntervalMS int `koanf:"recompute_interval_ms"`

	// RatingScale maps the posterior lower bound (0..1) to the rating axis.
	RatingScale float64 `koanf:"rating_scale"`

	// MetaReferenceSize is the population size below which confidence
	// bounds tighten; SmallMetaInflation is the z multiplier reached at a
	// population of one.
	MetaReferenceSize  int     `koanf:"meta_reference_size"`
	SmallMetaInflation float64 `koanf:"small_meta_inflation"`

	// ZBreakpoints overrides the sample-size z table when non-empty.
	ZBreakpoints []bayes.Breakpoint `koanf:"z_breakpoints"`

	// TierLadder overrides the default tier thresholds when non-empty.
	TierLadder []tier.Rung `koanf:"tier_ladder"`

	// Display rounding policy.
	DisplayIntervals []display.Interval `koanf:"display_intervals"`
	KiloThreshold    int                `koanf:"kilo_threshold"`

	// DatasetJSON and DatasetDB optionally seed the dataset at startup
	// from a JSON file or a SQLite database.
	DatasetJSON string `koanf:"dataset_json"`
	DatasetDB   string `koanf:"dataset_db"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		MaxPageSize:         500,
		DefaultPageSize:     50,
		RecomputeIntervalMS: 5_000,
		RatingScale:         180,
		MetaReferenceSize:   100,
		SmallMetaInflation:  1.5,
		KiloThreshold:       1000,
	}
}
