// Package repository holds the two stores the service runs on: the raw
// dataset being ingested, and the published leaderboard snapshot being
// queried.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/metaboard/internal/adapters/mq/queue"
	"github.com/okian/metaboard/internal/domain/model"
)

// Dataset accumulates raw records keyed by entity name; the latest
// submission for a name wins. A version counter tracks changes so the
// recompute loop can tell whether the published snapshot is stale.
type Dataset struct {
	mu      sync.RWMutex
	records map[string]model.RawRecord
	version uint64
}

// NewDataset creates an empty dataset with configuration options.
func NewDataset(opts ...DatasetOption) *Dataset {
	d := &Dataset{
		records: make(map[string]model.RawRecord),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Upsert stores one validated submission, replacing any earlier record
// for the same entity. Implements the worker's Upserter.
func (d *Dataset) Upsert(_ context.Context, s queue.Submission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[s.Record.Name] = s.Record
	d.version++
	return nil
}

// Seed bulk-loads records, e.g. from a JSON or SQLite source at startup.
// Invalid records are skipped and reported via the returned count.
func (d *Dataset) Seed(_ context.Context, records []model.RawRecord) (accepted int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range records {
		if err := r.Validate(); err != nil {
			continue
		}
		d.records[r.Name] = r
		accepted++
	}
	if accepted > 0 {
		d.version++
	}
	return accepted
}

// All returns the records sorted by name. Sorting makes dataset iteration
// deterministic, which keeps repeated pipeline runs bit-identical.
func (d *Dataset) All(_ context.Context) []model.RawRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.RawRecord, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of distinct entities in the dataset.
func (d *Dataset) Len(_ context.Context) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Version returns the current dataset version.
func (d *Dataset) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}
