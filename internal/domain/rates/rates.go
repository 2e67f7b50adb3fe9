// Package rates derives the per-record and population-relative basic rates:
// win rates, depth, usage share, and meta impact.
package rates

import (
	"fmt"

	"github.com/okian/metaboard/internal/domain/model"
)

const percent = 100.0

// Enrich seeds an EnrichedRecord from a raw record: total matches, raw and
// tie-adjusted win rates, and depth (matches per usage). The record must
// already have passed Validate; a degenerate record is rejected here again
// so the guarantee does not depend on call order.
func Enrich(r model.RawRecord) (model.EnrichedRecord, error) {
	if r.Count == 0 || r.TotalMatches() == 0 {
		return model.EnrichedRecord{}, fmt.Errorf("%w: %q", model.ErrDegenerateRecord, r.Name)
	}
	total := r.TotalMatches()
	n := float64(total)
	return model.EnrichedRecord{
		RawRecord:       r,
		TotalMatches:    total,
		WinRate:         float64(r.Wins) / n * percent,
		AdjustedWinRate: (float64(r.Wins) + 0.5*float64(r.Ties)) / n * percent,
		Depth:           n / float64(r.Count),
	}, nil
}

// ApplyShares fills share and share_vs_top across the whole population.
// Both are population-relative, so every count must be known first.
func ApplyShares(pop []model.EnrichedRecord) error {
	if len(pop) == 0 {
		return ErrEmptyPopulation
	}
	var totalCount int
	for i := range pop {
		totalCount += pop[i].Count
	}
	if totalCount == 0 {
		return ErrEmptyPopulation
	}
	maxShare := 0.0
	for i := range pop {
		pop[i].Share = float64(pop[i].Count) / float64(totalCount) * percent
		if pop[i].Share > maxShare {
			maxShare = pop[i].Share
		}
	}
	for i := range pop {
		pop[i].ShareVsTop = pop[i].Share / maxShare * percent
	}
	return nil
}

// ApplyMetaImpact scores each record by adjusted win rate weighted by usage
// share. Requires ApplyShares to have run.
func ApplyMetaImpact(pop []model.EnrichedRecord) {
	for i := range pop {
		pop[i].MetaImpact = pop[i].AdjustedWinRate * pop[i].Share
	}
}
