package bayes

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScale sets the bound-to-rating scale constant.
func WithScale(scale float64) Option {
	return func(e *Engine) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithBreakpoints replaces the sample-size z table. Breakpoints must be
// sorted by ascending N.
func WithBreakpoints(bps []Breakpoint) Option {
	return func(e *Engine) {
		if len(bps) > 0 {
			e.breakpoints = bps
		}
	}
}

// WithMetaReferenceSize sets the population size below which bounds are
// tightened. Zero disables the adjustment.
func WithMetaReferenceSize(size int) Option {
	return func(e *Engine) {
		if size >= 0 {
			e.metaReferenceSize = size
		}
	}
}

// WithSmallMetaInflation sets the z multiplier reached as the population
// shrinks toward a single entity. Must be >= 1.
func WithSmallMetaInflation(factor float64) Option {
	return func(e *Engine) {
		if factor >= 1 {
			e.smallMetaInflation = factor
		}
	}
}

// WithParallelism enables chunked posterior computation across the given
// number of goroutines for large populations.
func WithParallelism(workers int) Option {
	return func(e *Engine) {
		if workers > 0 {
			e.parallelism = workers
		}
	}
}
