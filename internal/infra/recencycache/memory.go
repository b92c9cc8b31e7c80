package recencycache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/query"
)

type memoryEntry struct {
	queries   []query.RecentQuery
	session   map[string]any
	expiresAt time.Time
}

// Memory is the in-process recency cache. Entries expire after the
// configured TTL, the per-user list is capped at maxEntries (newest first),
// and a background janitor sweeps expired users.
type Memory struct {
	mu         sync.RWMutex
	entries    map[int64]*memoryEntry
	ttl        time.Duration
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
	stop       chan struct{}
	stopOnce   sync.Once
	logger     *slog.Logger
}

func NewMemory(ttl time.Duration, maxEntries int, sweepInterval time.Duration, logger *slog.Logger) *Memory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	m := &Memory{
		entries:    make(map[int64]*memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
		logger:     logger.With("component", "recencycache.memory"),
	}
	if sweepInterval > 0 {
		go m.janitor(sweepInterval)
	}
	return m
}

// Put prepends the entry to the user's history, stamping it with the
// current time, and trims the oldest entries beyond the cap.
func (m *Memory) Put(_ context.Context, userID int64, entry query.RecentQuery) {
	entry.Timestamp = time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.entries[userID]
	if !ok || time.Now().After(current.expiresAt) {
		current = &memoryEntry{}
		m.entries[userID] = current
	}
	current.queries = append([]query.RecentQuery{entry}, current.queries...)
	if len(current.queries) > m.maxEntries {
		current.queries = current.queries[:m.maxEntries]
	}
	current.expiresAt = time.Now().Add(m.ttl)
}

// Get returns the user's recent queries newest first. The second return is
// false on a miss or after expiry; an empty slice with true is a valid hit.
func (m *Memory) Get(_ context.Context, userID int64) ([]query.RecentQuery, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current, ok := m.entries[userID]
	if !ok || time.Now().After(current.expiresAt) {
		m.misses.Add(1)
		return nil, false
	}
	m.hits.Add(1)

	out := make([]query.RecentQuery, len(current.queries))
	copy(out, current.queries)
	return out, true
}

func (m *Memory) SetSession(_ context.Context, userID int64, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.entries[userID]
	if !ok || time.Now().After(current.expiresAt) {
		current = &memoryEntry{}
		m.entries[userID] = current
	}
	current.session = data
	current.expiresAt = time.Now().Add(m.ttl)
}

func (m *Memory) Session(_ context.Context, userID int64) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current, ok := m.entries[userID]
	if !ok || time.Now().After(current.expiresAt) || current.session == nil {
		return nil, false
	}
	return current.session, true
}

// Invalidate drops everything cached for the user.
func (m *Memory) Invalidate(_ context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
}

func (m *Memory) Stats(_ context.Context) query.CacheStats {
	m.mu.RLock()
	keys := int64(len(m.entries))
	m.mu.RUnlock()
	return query.CacheStats{
		Keys:   keys,
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
}

// Close stops the janitor goroutine.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, userID)
		}
	}
}

var _ query.RecencyCache = (*Memory)(nil)
