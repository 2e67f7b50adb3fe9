package model

import "errors"

// Sentinel kinds for record validation errors.
var (
	ErrEmptyName        = errors.New("record name must not be empty")
	ErrNegativeField    = errors.New("record fields must not be negative")
	ErrDegenerateRecord = errors.New("degenerate record")
	ErrUnknownMetric    = errors.New("unknown metric")
)
