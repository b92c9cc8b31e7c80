package auditrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/audit"
)

// Memory is the in-process audit store used when Postgres is unavailable.
type Memory struct {
	mu      sync.RWMutex
	entries []audit.Entry
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) Log(_ context.Context, entry audit.Entry) (audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.nextID
	m.nextID++
	entry.CreatedAt = time.Now().UTC()
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *Memory) List(_ context.Context, filters audit.Filters) ([]audit.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]audit.Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		if filters.QueryID > 0 && entry.QueryID != filters.QueryID {
			continue
		}
		if !filters.From.IsZero() && entry.CreatedAt.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && entry.CreatedAt.After(filters.To) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}

var _ audit.Repository = (*Memory)(nil)
