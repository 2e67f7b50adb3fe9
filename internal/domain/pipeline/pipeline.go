// Package pipeline runs the full enrichment sequence over a raw dataset:
// rates -> shares -> meta impact -> Bayesian rating -> tiers -> ranks ->
// percentiles -> display formatting. Stages are population-global, so the
// whole batch is validated up front and either enriched completely or
// rejected; partial results are never published.
package pipeline

import (
	"context"
	"fmt"

	"github.com/okian/metaboard/internal/domain/bayes"
	"github.com/okian/metaboard/internal/domain/display"
	"github.com/okian/metaboard/internal/domain/model"
	"github.com/okian/metaboard/internal/domain/ranking"
	"github.com/okian/metaboard/internal/domain/rates"
	"github.com/okian/metaboard/internal/domain/tier"
)

// Pipeline wires the stage implementations. Safe for repeated Run calls;
// identical input yields identical output.
type Pipeline struct {
	engine     *bayes.Engine
	classifier *tier.Classifier
	formatter  *display.Formatter
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithEngine sets the rating engine.
func WithEngine(e *bayes.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithClassifier sets the tier classifier.
func WithClassifier(c *tier.Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithFormatter sets the display formatter.
func WithFormatter(f *display.Formatter) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.formatter = f
		}
	}
}

// New creates a pipeline with configuration options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:     bayes.NewEngine(),
		classifier: tier.NewClassifier(),
		formatter:  display.NewFormatter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is one complete enrichment run over a dataset snapshot.
type Result struct {
	Records      []model.EnrichedRecord // ordered by rank, 1 first
	Prior        bayes.Prior
	TotalCount   int
	TotalMatches int
}

// Run enriches the batch. The input slice is not modified. The context is
// accepted per project convention; the computation itself never blocks.
func (p *Pipeline) Run(ctx context.Context, raw []model.RawRecord) (*Result, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPopulation
	}

	// Validate-then-compute: any degenerate record rejects the whole
	// batch before the first derived value is produced.
	for _, r := range raw {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("reject batch: %w", err)
		}
	}

	pop := make([]model.EnrichedRecord, 0, len(raw))
	for _, r := range raw {
		rec, err := rates.Enrich(r)
		if err != nil {
			return nil, fmt.Errorf("reject batch: %w", err)
		}
		pop = append(pop, rec)
	}

	if err := rates.ApplyShares(pop); err != nil {
		return nil, err
	}
	rates.ApplyMetaImpact(pop)

	prior, err := p.engine.Apply(pop)
	if err != nil {
		return nil, err
	}

	for i := range pop {
		pop[i].Tier, pop[i].TierDisplay = p.classifier.Classify(pop[i].Rating)
	}

	if err := ranking.AssignRanks(pop); err != nil {
		return nil, err
	}
	if err := ranking.ApplyPercentiles(pop); err != nil {
		return nil, err
	}

	p.formatter.Apply(pop)

	res := &Result{Records: pop, Prior: prior}
	for i := range pop {
		res.TotalCount += pop[i].Count
		res.TotalMatches += pop[i].TotalMatches
	}
	return res, nil
}
