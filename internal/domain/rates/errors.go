package rates

import "errors"

// Sentinel kinds for rate derivation errors.
var (
	ErrEmptyPopulation = errors.New("empty population")
)
