package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps run records in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]RunRecord)}
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, rec RunRecord) error {
	if err := ctx.Err(); err != nil {
		return newStorageError("memory", "record", err)
	}

	rec.Decisions = append([]Decision(nil), rec.Decisions...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[rec.ID] = rec
	return nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, newStorageError("memory", "list", err)
	}

	m.mu.RLock()
	records := make([]RunRecord, 0, len(m.runs))
	for _, rec := range m.runs {
		records = append(records, rec)
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].StartedAt.After(records[j].StartedAt)
		}
		return records[i].ID > records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
