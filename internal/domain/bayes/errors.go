package bayes

import "errors"

// Sentinel kinds for rating engine errors.
var (
	ErrEmptyPopulation = errors.New("empty population")
	ErrPriorEstimation = errors.New("prior estimation failed")
)
