// Package ranking assigns dense ranks and per-metric percentiles across
// the full population. Both are population-global: no record's rank or
// percentile is defined until every record has been rated.
package ranking

import (
	"sort"

	"github.com/okian/metaboard/internal/domain/model"
)

// AssignRanks orders the population by rating descending and assigns
// ranks 1..N by position. Equal ratings break ties on total matches
// descending, then name ascending, so the order is a deterministic total
// order regardless of input order.
func AssignRanks(pop []model.EnrichedRecord) error {
	if len(pop) == 0 {
		return ErrEmptyPopulation
	}
	sort.SliceStable(pop, func(i, j int) bool {
		if pop[i].Rating != pop[j].Rating {
			return pop[i].Rating > pop[j].Rating
		}
		if pop[i].TotalMatches != pop[j].TotalMatches {
			return pop[i].TotalMatches > pop[j].TotalMatches
		}
		return pop[i].Name < pop[j].Name
	})
	for i := range pop {
		pop[i].Rank = i + 1
	}
	return nil
}

// ApplyPercentiles fills every *_percentile field. For a value v of
// metric m, percentile = (members strictly below v) / (N-1) * 100, so the
// best record sits at 100 and the worst at 0. Rank is negated first so
// rank 1 maps to the 100th percentile. A single-record population takes
// the upper boundary.
func ApplyPercentiles(pop []model.EnrichedRecord) error {
	if len(pop) == 0 {
		return ErrEmptyPopulation
	}
	if len(pop) == 1 {
		for _, m := range model.Metrics() {
			m.SetPercentile(&pop[0], 100)
		}
		return nil
	}

	denom := float64(len(pop) - 1)
	for _, m := range model.Metrics() {
		values := make([]float64, len(pop))
		for i := range pop {
			values[i] = metricValue(m, &pop[i])
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		for i := range pop {
			below := sort.SearchFloat64s(sorted, values[i])
			m.SetPercentile(&pop[i], float64(below)/denom*100)
		}
	}
	return nil
}

// metricValue reads the metric, negating rank so that smaller (better)
// ranks produce larger percentiles.
func metricValue(m model.Metric, r *model.EnrichedRecord) float64 {
	v := m.Value(r)
	if m == model.MetricRank {
		return -v
	}
	return v
}
