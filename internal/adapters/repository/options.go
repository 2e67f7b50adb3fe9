package repository

import "github.com/okian/metaboard/internal/domain/model"

// DatasetOption applies a configuration option to the Dataset.
type DatasetOption func(*Dataset)

// WithInitialCapacity pre-sizes the record map for known dataset sizes.
func WithInitialCapacity(capacity int) DatasetOption {
	return func(d *Dataset) {
		if capacity > 0 {
			d.records = make(map[string]model.RawRecord, capacity)
		}
	}
}
