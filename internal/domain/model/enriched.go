package model

// EnrichedRecord is a RawRecord plus every derived field the pipeline
// produces. All derived values are pure functions of the raw record and
// population-wide aggregates; records are never mutated after publication.
type EnrichedRecord struct {
	RawRecord

	TotalMatches int `json:"total_matches"`

	WinRate         float64 `json:"win_rate"`          // 0..100
	AdjustedWinRate float64 `json:"adjusted_win_rate"` // ties count as half wins
	Depth           float64 `json:"depth"`             // matches per usage

	Share      float64 `json:"share"`        // % of total usage
	ShareVsTop float64 `json:"share_vs_top"` // % of the most-used build's share

	MetaImpact float64 `json:"meta_impact"`

	Rating      float64 `json:"rating"`
	Tier        string  `json:"tier"`
	TierDisplay string  `json:"tier_display"`
	Rank        int     `json:"rank"` // dense, 1 = best

	RatingPercentile          float64 `json:"rating_percentile"`
	CountPercentile           float64 `json:"count_percentile"`
	TotalMatchesPercentile    float64 `json:"total_matches_percentile"`
	WinRatePercentile         float64 `json:"win_rate_percentile"`
	AdjustedWinRatePercentile float64 `json:"adjusted_win_rate_percentile"`
	DepthPercentile           float64 `json:"depth_percentile"`
	MetaImpactPercentile      float64 `json:"meta_impact_percentile"`
	RankPercentile            float64 `json:"rank_percentile"`

	CountDisplay        string `json:"count_display"`
	TotalMatchesDisplay string `json:"total_matches_display"`
	WinRateDisplay      string `json:"win_rate_display"`
	ShareDisplay        string `json:"share_display"`
}
