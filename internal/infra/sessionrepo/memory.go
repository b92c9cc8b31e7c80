package sessionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/session"
)

// Memory is the in-process session store used when Postgres is unavailable.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]session.Session)}
}

func (m *Memory) Create(_ context.Context, s session.Session) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.sessions[s.ID] = s
	return s, nil
}

func (m *Memory) GetByID(_ context.Context, id string) (session.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return session.Session{}, false, nil
	}
	return s, true, nil
}

func (m *Memory) Update(_ context.Context, id string, data map[string]any) (session.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return session.Session{}, false, nil
	}
	s.Data = data
	s.UpdatedAt = time.Now().UTC()
	m.sessions[id] = s
	return s, true, nil
}

func (m *Memory) Extend(_ context.Context, id string, by time.Duration) (session.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return session.Session{}, false, nil
	}
	s.ExpiresAt = time.Now().Add(by)
	s.UpdatedAt = time.Now().UTC()
	m.sessions[id] = s
	return s, true, nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *Memory) ListByUser(_ context.Context, userID int64) ([]session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var sessions []session.Session
	for _, s := range m.sessions {
		if s.UserID == userID && now.Before(s.ExpiresAt) {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (m *Memory) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

var _ session.Repository = (*Memory)(nil)
