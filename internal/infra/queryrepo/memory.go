package queryrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/query"
)

// Memory is the in-process query store used when Postgres is unavailable.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]query.Record
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{records: make(map[int64]query.Record), nextID: 1}
}

func (m *Memory) Create(_ context.Context, rec query.Record) (query.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = time.Now().UTC()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *Memory) GetByID(_ context.Context, id int64) (query.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok, nil
}

func (m *Memory) List(_ context.Context, filters query.Filters) ([]query.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]query.Record, 0, len(m.records))
	for _, rec := range m.records {
		if filters.UserID != nil && (rec.UserID == nil || *rec.UserID != *filters.UserID) {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })

	if filters.Offset > 0 {
		if filters.Offset >= len(records) {
			return []query.Record{}, nil
		}
		records = records[filters.Offset:]
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *Memory) RecentByUser(_ context.Context, userID int64, limit int) ([]query.RecentQuery, error) {
	if limit <= 0 {
		limit = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []query.Record
	for _, rec := range m.records {
		if rec.UserID != nil && *rec.UserID == userID {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if len(matched) > limit {
		matched = matched[:limit]
	}

	recent := make([]query.RecentQuery, 0, len(matched))
	for _, rec := range matched {
		recent = append(recent, query.RecentQuery{
			Question:   rec.Question,
			Answer:     rec.Answer,
			Similarity: rec.SimilarityScore,
			Timestamp:  rec.CreatedAt,
		})
	}
	return recent, nil
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

var _ query.Repository = (*Memory)(nil)
