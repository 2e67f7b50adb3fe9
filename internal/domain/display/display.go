// Package display produces the rounded, human-readable variants of count,
// match-total, win-rate, and share fields. Purely presentational: nothing
// here feeds back into ratings, tiers, or ranks.
package display

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/metaboard/internal/domain/model"
)

// Interval maps a value ceiling to the rounding step used beneath it.
type Interval struct {
	Max  int `koanf:"max" json:"max"`
	Step int `koanf:"step" json:"step"`
}

// Default rounding policy constants.
const (
	defaultKiloThreshold = 1000
)

// defaultIntervals round small counts to friendly steps; anything at or
// above the kilo threshold switches to the short "k" form.
func defaultIntervals() []Interval {
	return []Interval{
		{Max: 100, Step: 5},
		{Max: 500, Step: 10},
		{Max: 1000, Step: 50},
	}
}

// Formatter renders display fields under an injectable rounding policy.
type Formatter struct {
	intervals     []Interval
	kiloThreshold int
}

// Option applies a configuration option to the Formatter.
type Option func(*Formatter)

// WithIntervals replaces the count rounding intervals.
func WithIntervals(intervals []Interval) Option {
	return func(f *Formatter) {
		if len(intervals) > 0 {
			f.intervals = intervals
		}
	}
}

// WithKiloThreshold sets the value at which counts switch to "k" notation.
func WithKiloThreshold(threshold int) Option {
	return func(f *Formatter) {
		if threshold > 0 {
			f.kiloThreshold = threshold
		}
	}
}

// NewFormatter creates a formatter with configuration options.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		intervals:     defaultIntervals(),
		kiloThreshold: defaultKiloThreshold,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply fills the display fields of every record in place.
func (f *Formatter) Apply(pop []model.EnrichedRecord) {
	for i := range pop {
		pop[i].CountDisplay = f.FormatCount(pop[i].Count)
		pop[i].TotalMatchesDisplay = f.FormatCount(pop[i].TotalMatches)
		pop[i].WinRateDisplay = FormatPercent(pop[i].WinRate)
		pop[i].ShareDisplay = FormatPercent(pop[i].Share)
	}
}

// FormatCount rounds a count to a magnitude-appropriate interval, or to a
// one-decimal "k" short form at or above the kilo threshold.
func (f *Formatter) FormatCount(n int) string {
	if n >= f.kiloThreshold {
		k := float64(n) / 1000.0
		s := strconv.FormatFloat(math.Round(k*10)/10, 'f', 1, 64)
		s = strings.TrimSuffix(s, ".0")
		return s + "k"
	}
	for _, iv := range f.intervals {
		if n < iv.Max {
			return strconv.Itoa(roundToStep(n, iv.Step))
		}
	}
	return strconv.Itoa(n)
}

// FormatPercent renders a rate as a whole percentage, e.g. "60%".
func FormatPercent(v float64) string {
	return strconv.Itoa(int(math.Round(v))) + "%"
}

func roundToStep(n, step int) int {
	if step <= 1 {
		return n
	}
	return int(math.Round(float64(n)/float64(step))) * step
}
