package audit

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository, used in
// tests and single-process deployments.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemory creates a new in-memory audit repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) RecordWrite(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *MemoryRepository) ListBySection(ctx context.Context, section string, limit int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Section != section {
			continue
		}
		copied := *r.entries[i]
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
