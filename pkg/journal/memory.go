package journal

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the in-memory journal.
const DefaultMemoryCapacity = 1000

// MemoryStorer keeps the most recent entries in memory, dropping the oldest
// once capacity is reached.
type MemoryStorer struct {
	mu       sync.RWMutex
	entries  []*Entry
	ids      map[string]struct{}
	capacity int
}

// NewMemoryStorer creates a MemoryStorer. A non-positive capacity uses
// DefaultMemoryCapacity.
func NewMemoryStorer(capacity int) *MemoryStorer {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	return &MemoryStorer{
		ids:      make(map[string]struct{}),
		capacity: capacity,
	}
}

func (m *MemoryStorer) Put(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[entry.ID]; ok {
		return nil
	}

	m.entries = append(m.entries, entry)
	m.ids[entry.ID] = struct{}{}

	if over := len(m.entries) - m.capacity; over > 0 {
		for _, e := range m.entries[:over] {
			delete(m.ids, e.ID)
		}
		m.entries = append([]*Entry(nil), m.entries[over:]...)
	}

	return nil
}

func (m *MemoryStorer) Recent(_ context.Context, limit int) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}

	out := make([]*Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}

	return out, nil
}

func (m *MemoryStorer) Prune(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(m.ids, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept

	return removed, nil
}

func (m *MemoryStorer) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries), nil
}

func (m *MemoryStorer) Close() error {
	return nil
}
