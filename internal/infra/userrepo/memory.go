package userrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/user"
)

// Memory is the in-process user store used when Postgres is unavailable.
type Memory struct {
	mu     sync.RWMutex
	users  map[int64]user.User
	nextID int64
}

func NewMemory() *Memory {
	return &Memory{users: make(map[int64]user.User), nextID: 1}
}

func (m *Memory) Create(_ context.Context, in user.CreateInput) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	u := user.User{
		ID:        m.nextID,
		Name:      in.Name,
		Email:     in.Email,
		Metadata:  in.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if u.Metadata == nil {
		u.Metadata = map[string]any{}
	}
	m.nextID++
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *Memory) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

func (m *Memory) List(_ context.Context, filters user.Filters) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	if filters.Offset > 0 {
		if filters.Offset >= len(users) {
			return []user.User{}, nil
		}
		users = users[filters.Offset:]
	}
	if filters.Limit > 0 && len(users) > filters.Limit {
		users = users[:filters.Limit]
	}
	return users, nil
}

func (m *Memory) Update(_ context.Context, id int64, u user.User) (user.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[id]
	if !ok {
		return user.User{}, false, nil
	}
	u.ID = id
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, true, nil
}

func (m *Memory) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

var _ user.Repository = (*Memory)(nil)
