package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/metrics"
)

// MemoryStore is a concurrency-safe in-memory implementation of hours.Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []hours.HourEntry

	now func() time.Time
}

// NewMemoryStore creates a MemoryStore holding a copy of seed.
func NewMemoryStore(seed []hours.HourEntry) *MemoryStore {
	entries := make([]hours.HourEntry, len(seed))
	copy(entries, seed)
	return &MemoryStore{
		entries: entries,
		now:     time.Now,
	}
}

// LogHours appends a new entry with a generated id and creation time.
func (s *MemoryStore) LogHours(_ context.Context, in hours.NewEntry) (hours.HourEntry, error) {
	start := time.Now()

	entry := hours.HourEntry{
		ID:        uuid.NewString(),
		StaffName: in.StaffName,
		Hours:     in.Hours,
		Date:      in.Date,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	metrics.RecordStoreQuery("log_hours", time.Since(start), nil)
	return entry, nil
}

// ListHours returns entries matching f, newest createdAt first.
func (s *MemoryStore) ListHours(_ context.Context, f hours.Filter) ([]hours.HourEntry, error) {
	start := time.Now()

	s.mu.RLock()
	result := make([]hours.HourEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if f.Matches(e) {
			result = append(result, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	metrics.RecordStoreQuery("list_hours", time.Since(start), nil)
	return result, nil
}

// GetEntriesByDateRange returns entries whose date lies in [from, to], newest date first.
// ISO dates compare correctly as strings.
func (s *MemoryStore) GetEntriesByDateRange(_ context.Context, from, to string) ([]hours.HourEntry, error) {
	start := time.Now()

	s.mu.RLock()
	var result []hours.HourEntry
	for _, e := range s.entries {
		if e.Date >= from && e.Date <= to {
			result = append(result, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})

	metrics.RecordStoreQuery("hours_by_range", time.Since(start), nil)
	return result, nil
}
