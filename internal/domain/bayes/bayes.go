// Package bayes implements the empirical-Bayes rating engine. A Beta prior
// is estimated from the whole population's tie-adjusted win rates, each
// record gets a Beta-Binomial posterior, and the rating is a conservative
// lower confidence bound on the posterior scaled to the tier range.
package bayes

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/metaboard/internal/domain/model"
)

// Default engine configuration constants.
const (
	defaultScale              = 180.0
	defaultMetaReferenceSize  = 100
	defaultSmallMetaInflation = 1.5 // z multiplier as the meta shrinks to one entity
	defaultMinPriorParam      = 0.5
	defaultMaxVarianceShare   = 0.85 // fraction of the Bernoulli maximum mu*(1-mu)

	minPriorMean = 0.01
	maxPriorMean = 0.99
	minVariance  = 1e-9
	maxBound     = 0.99

	// Populations at or above this size fan the posterior step out
	// across goroutines; the prior is immutable by then.
	parallelThreshold = 2048
)

// Breakpoint pairs a sample size with the z-score applied at that size.
// Between breakpoints the z is interpolated on log10(n); outside the table
// the nearest endpoint applies.
type Breakpoint struct {
	N float64 `koanf:"n" json:"n"`
	Z float64 `koanf:"z" json:"z"`
}

// defaultBreakpoints tighten the bound as evidence accumulates, spanning
// single-match records to n >= 1e5.
func defaultBreakpoints() []Breakpoint {
	return []Breakpoint{
		{N: 1, Z: 3.09},
		{N: 10, Z: 2.58},
		{N: 100, Z: 2.33},
		{N: 1_000, Z: 1.96},
		{N: 10_000, Z: 1.64},
		{N: 100_000, Z: 1.28},
	}
}

// Prior is the population-level Beta prior, estimated once per run.
type Prior struct {
	Mean     float64 // match-weighted mean adjusted win rate, 0..1
	Variance float64 // clamped weighted variance
	Alpha    float64
	Beta     float64
}

// Posterior is a record's Beta posterior after the conjugate update.
type Posterior struct {
	Alpha float64
	Beta  float64
}

// Mean returns alpha/(alpha+beta).
func (p Posterior) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}

// Variance returns the Beta posterior variance.
func (p Posterior) Variance() float64 {
	s := p.Alpha + p.Beta
	return p.Alpha * p.Beta / (s * s * (s + 1))
}

// Engine computes ratings. Safe for concurrent use once constructed.
type Engine struct {
	scale              float64
	breakpoints        []Breakpoint
	metaReferenceSize  int
	smallMetaInflation float64
	minPriorParam      float64
	maxVarianceShare   float64
	parallelism        int
}

// NewEngine creates a rating engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scale:              defaultScale,
		breakpoints:        defaultBreakpoints(),
		metaReferenceSize:  defaultMetaReferenceSize,
		smallMetaInflation: defaultSmallMetaInflation,
		minPriorParam:      defaultMinPriorParam,
		maxVarianceShare:   defaultMaxVarianceShare,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scale returns the configured bound-to-rating scale constant.
func (e *Engine) Scale() float64 {
	return e.scale
}

// EstimatePrior computes the population Beta prior from every record's
// adjusted win rate, weighted by match count. A single-record population
// has no usable variance and falls back to the uniform Beta(1,1) prior.
func (e *Engine) EstimatePrior(pop []model.EnrichedRecord) (Prior, error) {
	if len(pop) == 0 {
		return Prior{}, ErrEmptyPopulation
	}
	if len(pop) == 1 {
		return Prior{Mean: 0.5, Variance: 1.0 / 12.0, Alpha: 1, Beta: 1}, nil
	}

	xs := make([]float64, len(pop))
	ws := make([]float64, len(pop))
	for i := range pop {
		xs[i] = pop[i].AdjustedWinRate / 100.0
		ws[i] = float64(pop[i].TotalMatches)
	}
	mu, variance := stat.MeanVariance(xs, ws)
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return Prior{}, ErrPriorEstimation
	}

	mu = clamp(mu, minPriorMean, maxPriorMean)
	maxVar := e.maxVarianceShare * mu * (1 - mu)
	if math.IsNaN(variance) || math.IsInf(variance, 0) || variance <= 0 {
		variance = minVariance
	}
	variance = clamp(variance, minVariance, maxVar)

	// Method of moments. nu is the prior's implied pseudo-sample size
	// minus one; large variance relative to mu*(1-mu) drives it toward
	// zero, hence the floor on both parameters.
	nu := mu*(1-mu)/variance - 1
	alpha := math.Max(mu*nu, e.minPriorParam)
	beta := math.Max((1-mu)*nu, e.minPriorParam)

	return Prior{Mean: mu, Variance: variance, Alpha: alpha, Beta: beta}, nil
}

// Update performs the Beta-Binomial conjugate update for one record.
// Ties split half and half between the win and loss tallies.
func (e *Engine) Update(r model.RawRecord, prior Prior) Posterior {
	half := 0.5 * float64(r.Ties)
	return Posterior{
		Alpha: prior.Alpha + float64(r.Wins) + half,
		Beta:  prior.Beta + float64(r.Losses) + half,
	}
}

// LowerBound returns the z-adjusted lower confidence bound on the
// posterior mean, clamped to [0, maxBound].
func (e *Engine) LowerBound(post Posterior, sampleSize, popSize int) float64 {
	z := e.zScore(float64(sampleSize), popSize)
	bound := post.Mean() - z*math.Sqrt(post.Variance())
	return clamp(bound, 0, maxBound)
}

// RateOne computes a single record's rating given an already estimated
// prior. Records with no matches stay unrated at zero.
func (e *Engine) RateOne(r model.RawRecord, prior Prior, popSize int) float64 {
	n := r.TotalMatches()
	if n == 0 {
		return 0
	}
	post := e.Update(r, prior)
	return e.LowerBound(post, n, popSize) * e.scale
}

// Apply estimates the prior and fills Rating for every record in place.
// The posterior step is independent per record, so large populations are
// split across goroutines.
func (e *Engine) Apply(pop []model.EnrichedRecord) (Prior, error) {
	prior, err := e.EstimatePrior(pop)
	if err != nil {
		return Prior{}, err
	}

	workers := e.parallelism
	if len(pop) < parallelThreshold || workers < 2 {
		for i := range pop {
			pop[i].Rating = e.RateOne(pop[i].RawRecord, prior, len(pop))
		}
		return prior, nil
	}

	var wg sync.WaitGroup
	chunk := (len(pop) + workers - 1) / workers
	for lo := 0; lo < len(pop); lo += chunk {
		hi := lo + chunk
		if hi > len(pop) {
			hi = len(pop)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				pop[i].Rating = e.RateOne(pop[i].RawRecord, prior, len(pop))
			}
		}(lo, hi)
	}
	wg.Wait()
	return prior, nil
}

// zScore interpolates the sample-size z and applies the meta-size
// adjustment: a thin meta (fewer entities than the reference size)
// inflates z, treating conclusions drawn from it with more caution.
func (e *Engine) zScore(sampleSize float64, popSize int) float64 {
	z := interpolateZ(e.breakpoints, sampleSize)
	if popSize < e.metaReferenceSize && e.metaReferenceSize > 0 {
		deficit := 1 - float64(popSize)/float64(e.metaReferenceSize)
		z *= 1 + deficit*(e.smallMetaInflation-1)
	}
	return z
}

func interpolateZ(bps []Breakpoint, n float64) float64 {
	if len(bps) == 0 {
		return 0
	}
	if n <= bps[0].N {
		return bps[0].Z
	}
	last := bps[len(bps)-1]
	if n >= last.N {
		return last.Z
	}
	for i := 1; i < len(bps); i++ {
		if n > bps[i].N {
			continue
		}
		lo, hi := bps[i-1], bps[i]
		t := (math.Log10(n) - math.Log10(lo.N)) / (math.Log10(hi.N) - math.Log10(lo.N))
		return lo.Z + t*(hi.Z-lo.Z)
	}
	return last.Z
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
