package archive

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is the in-process fallback used when no database is
// configured. Records live only as long as the process.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

func (r *MemoryRepository) SaveResult(_ context.Context, rec Record) error {
	r.mu.Lock()
	r.records[rec.ID] = rec
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) Close() error { return nil }
