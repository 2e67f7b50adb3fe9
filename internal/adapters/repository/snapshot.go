package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/metaboard/internal/domain/bayes"
	"github.com/okian/metaboard/internal/domain/model"
)

// Snapshot is one immutable published result of a pipeline run. Records
// are ordered by rank; byName indexes into Records.
type Snapshot struct {
	ID             string
	ComputedAt     time.Time
	DatasetVersion uint64
	Prior          bayes.Prior
	Records        []model.EnrichedRecord
	TotalCount     int
	TotalMatches   int

	byName map[string]int
}

// NewSnapshot builds a snapshot over rank-ordered records.
func NewSnapshot(id string, computedAt time.Time, version uint64, prior bayes.Prior, records []model.EnrichedRecord, totalCount, totalMatches int) *Snapshot {
	s := &Snapshot{
		ID:             id,
		ComputedAt:     computedAt,
		DatasetVersion: version,
		Prior:          prior,
		Records:        records,
		TotalCount:     totalCount,
		TotalMatches:   totalMatches,
		byName:         make(map[string]int, len(records)),
	}
	for i := range records {
		s.byName[records[i].Name] = i
	}
	return s
}

// Query selects a page of a snapshot. Sort defaults to rating; rank sorts
// ascending (best first), every other metric descending.
type Query struct {
	Limit  int
	Offset int
	Sort   model.Metric
	Tier   string // exact tier label filter, empty = all
	Name   string // case-insensitive substring filter, empty = all
}

// SnapshotStore publishes and serves the current snapshot. Publication is
// an atomic pointer swap; readers never see a partially built snapshot.
type SnapshotStore struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Publish replaces the current snapshot.
func (s *SnapshotStore) Publish(_ context.Context, snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
}

// Current returns the published snapshot, or ErrNoSnapshot before the
// first successful recompute.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

// Page returns one page of entries plus the total number of entries that
// matched the filters (for pagination headers).
func (s *SnapshotStore) Page(ctx context.Context, q Query) ([]model.EnrichedRecord, int, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, 0, err
	}
	if q.Limit < 1 {
		return nil, 0, ErrInvalidLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sortKey := q.Sort
	if sortKey == "" {
		sortKey = model.MetricRating
	}

	matched := make([]model.EnrichedRecord, 0, len(snap.Records))
	nameQuery := strings.ToLower(q.Name)
	for i := range snap.Records {
		r := &snap.Records[i]
		if q.Tier != "" && r.Tier != q.Tier {
			continue
		}
		if nameQuery != "" && !strings.Contains(strings.ToLower(r.Name), nameQuery) {
			continue
		}
		matched = append(matched, *r)
	}

	// Records arrive rank-ordered; only re-sort for other keys. Ties fall
	// back to rank so pages are stable under any sort.
	if sortKey != model.MetricRank && sortKey != model.MetricRating {
		sort.SliceStable(matched, func(i, j int) bool {
			vi, vj := sortKey.Value(&matched[i]), sortKey.Value(&matched[j])
			if vi != vj {
				return vi > vj
			}
			return matched[i].Rank < matched[j].Rank
		})
	}

	total := len(matched)
	if q.Offset >= total {
		return []model.EnrichedRecord{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

// Entity returns the enriched record for one entity name.
func (s *SnapshotStore) Entity(ctx context.Context, name string) (model.EnrichedRecord, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return model.EnrichedRecord{}, err
	}
	i, ok := snap.byName[name]
	if !ok {
		return model.EnrichedRecord{}, ErrNotFound
	}
	return snap.Records[i], nil
}

// TierCounts returns the number of entities per tier label.
func (s *SnapshotStore) TierCounts(ctx context.Context) (map[string]int, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for i := range snap.Records {
		counts[snap.Records[i].Tier]++
	}
	return counts, nil
}
