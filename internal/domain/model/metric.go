package model

import "fmt"

// Metric names a numeric field of EnrichedRecord that can be sorted on or
// percentile-ranked. The set matches the output contract of the pipeline.
type Metric string

// Rankable metrics.
const (
	MetricRating          Metric = "rating"
	MetricCount           Metric = "count"
	MetricTotalMatches    Metric = "total_matches"
	MetricWinRate         Metric = "win_rate"
	MetricAdjustedWinRate Metric = "adjusted_win_rate"
	MetricDepth           Metric = "depth"
	MetricMetaImpact      Metric = "meta_impact"
	MetricRank            Metric = "rank"
)

// Metrics lists every rankable metric in a fixed order.
func Metrics() []Metric {
	return []Metric{
		MetricRating,
		MetricCount,
		MetricTotalMatches,
		MetricWinRate,
		MetricAdjustedWinRate,
		MetricDepth,
		MetricMetaImpact,
		MetricRank,
	}
}

// ParseMetric validates a metric name from an external source (query
// parameter, CLI flag).
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics() {
		if s == string(m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Value extracts the metric's value from a record.
func (m Metric) Value(r *EnrichedRecord) float64 {
	switch m {
	case MetricRating:
		return r.Rating
	case MetricCount:
		return float64(r.Count)
	case MetricTotalMatches:
		return float64(r.TotalMatches)
	case MetricWinRate:
		return r.WinRate
	case MetricAdjustedWinRate:
		return r.AdjustedWinRate
	case MetricDepth:
		return r.Depth
	case MetricMetaImpact:
		return r.MetaImpact
	case MetricRank:
		return float64(r.Rank)
	default:
		return 0
	}
}

// SetPercentile stores a percentile value on the field paired with the metric.
func (m Metric) SetPercentile(r *EnrichedRecord, p float64) {
	switch m {
	case MetricRating:
		r.RatingPercentile = p
	case MetricCount:
		r.CountPercentile = p
	case MetricTotalMatches:
		r.TotalMatchesPercentile = p
	case MetricWinRate:
		r.WinRatePercentile = p
	case MetricAdjustedWinRate:
		r.AdjustedWinRatePercentile = p
	case MetricDepth:
		r.DepthPercentile = p
	case MetricMetaImpact:
		r.MetaImpactPercentile = p
	case MetricRank:
		r.RankPercentile = p
	}
}
