package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidLimit = errors.New("invalid page limit")
	ErrNoSnapshot   = errors.New("no snapshot published yet")
)
