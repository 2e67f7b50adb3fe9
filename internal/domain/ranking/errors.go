package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrEmptyPopulation = errors.New("empty population")
)
