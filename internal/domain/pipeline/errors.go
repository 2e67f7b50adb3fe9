package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrEmptyPopulation = errors.New("empty population")
)
