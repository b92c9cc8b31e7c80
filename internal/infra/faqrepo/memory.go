package faqrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/faq"
)

// Memory is the in-process FAQ store used when Postgres is unavailable.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]faq.Record
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{records: make(map[int64]faq.Record), nextID: 1}
}

func (m *Memory) Create(_ context.Context, rec faq.Record) (faq.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *Memory) GetByID(_ context.Context, id int64) (faq.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok, nil
}

func (m *Memory) List(_ context.Context, filters faq.Filters) ([]faq.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]faq.Record, 0, len(m.records))
	for _, rec := range m.records {
		if filters.Category != "" && rec.Category != filters.Category {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if filters.Limit > 0 && len(records) > filters.Limit {
		records = records[:filters.Limit]
	}
	return records, nil
}

func (m *Memory) Update(_ context.Context, rec faq.Record) (faq.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[rec.ID]
	if !ok {
		return faq.Record{}, false, nil
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	m.records[rec.ID] = rec
	return rec, true, nil
}

func (m *Memory) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

var _ faq.Repository = (*Memory)(nil)
