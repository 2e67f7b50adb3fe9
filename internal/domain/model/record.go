// Package model contains domain models passed between layers.
package model

import "fmt"

// RawRecord is one build's aggregate match summary as submitted by a data
// source. Fields mirror the JSON schema for /records.
type RawRecord struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`  // usage count across the dataset
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Ties   int    `json:"ties"`
}

// TotalMatches returns wins + losses + ties. The total is always derived,
// never stored or accepted as input.
func (r RawRecord) TotalMatches() int {
	return r.Wins + r.Losses + r.Ties
}

// Validate rejects records the pipeline cannot rate. Degenerate records
// (count or total matches of zero) are refused up front so that no
// NaN/Inf ever reaches a rating or percentile.
func (r RawRecord) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.Count < 0 || r.Wins < 0 || r.Losses < 0 || r.Ties < 0 {
		return fmt.Errorf("%w: %q", ErrNegativeField, r.Name)
	}
	if r.Count == 0 || r.TotalMatches() == 0 {
		return fmt.Errorf("%w: %q", ErrDegenerateRecord, r.Name)
	}
	return nil
}
