// Package tier maps ratings to ordinal tier labels through a descending
// threshold ladder. The ladder is configuration, not code: cut points are
// policy and change between seasons.
package tier

import "sort"

// Unranked is the sentinel tier for ratings below the lowest rung.
const Unranked = "Unranked"

// Rung is one ladder step: a label and the minimum rating that earns it.
type Rung struct {
	Label   string  `koanf:"label" json:"label"`
	Display string  `koanf:"display" json:"display"`
	Min     float64 `koanf:"min" json:"min"`
}

// DefaultLadder is the season ladder used when none is configured.
func DefaultLadder() []Rung {
	return []Rung{
		{Label: "X", Display: "X Tier", Min: 100},
		{Label: "S+", Display: "S+ Tier", Min: 96},
		{Label: "S", Display: "S Tier", Min: 92},
		{Label: "A", Display: "A Tier", Min: 89},
		{Label: "B", Display: "B Tier", Min: 86},
		{Label: "C", Display: "C Tier", Min: 83},
		{Label: "D", Display: "D Tier", Min: 80},
		{Label: "E", Display: "E Tier", Min: 77},
		{Label: "F", Display: "F Tier", Min: 74},
	}
}

// Classifier evaluates a rating against the ladder, highest rung first.
type Classifier struct {
	rungs []Rung
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithLadder replaces the default ladder. Rungs are re-sorted by
// descending minimum so callers can supply them in any order.
func WithLadder(rungs []Rung) Option {
	return func(c *Classifier) {
		if len(rungs) > 0 {
			c.rungs = append([]Rung(nil), rungs...)
		}
	}
}

// NewClassifier creates a classifier with configuration options.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{rungs: DefaultLadder()}
	for _, opt := range opts {
		opt(c)
	}
	sort.SliceStable(c.rungs, func(i, j int) bool {
		return c.rungs[i].Min > c.rungs[j].Min
	})
	return c
}

// Classify returns the label and display string for a rating. The first
// rung whose minimum the rating meets wins; no record is left untiered —
// anything below the lowest rung is Unranked.
func (c *Classifier) Classify(rating float64) (label, display string) {
	for _, r := range c.rungs {
		if rating >= r.Min {
			return r.Label, r.Display
		}
	}
	return Unranked, Unranked
}
