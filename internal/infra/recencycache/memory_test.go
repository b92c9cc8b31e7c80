package recencycache

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-assistant/internal/domain/query"
)

func newMemory(t *testing.T, ttl time.Duration, maxEntries int) *Memory {
	t.Helper()
	m := NewMemory(ttl, maxEntries, 0, slog.New(slog.DiscardHandler))
	t.Cleanup(m.Close)
	return m
}

func TestMemoryPutGetOrder(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, time.Hour, 100)

	cache.Put(ctx, 7, query.RecentQuery{Question: "first"})
	cache.Put(ctx, 7, query.RecentQuery{Question: "second"})

	got, ok := cache.Get(ctx, 7)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, "second", got[0].Question)
	require.Equal(t, "first", got[1].Question)
	require.False(t, got[0].Timestamp.IsZero())
}

func TestMemoryMissForUnknownUser(t *testing.T) {
	cache := newMemory(t, time.Hour, 100)
	got, ok := cache.Get(context.Background(), 42)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestMemoryCapsEntries(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, time.Hour, 100)

	for i := 0; i < 105; i++ {
		cache.Put(ctx, 1, query.RecentQuery{Question: fmt.Sprintf("q%d", i)})
	}

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	require.Len(t, got, 100)
	require.Equal(t, "q104", got[0].Question)
	require.Equal(t, "q5", got[99].Question)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, 10*time.Millisecond, 100)

	cache.Put(ctx, 3, query.RecentQuery{Question: "ephemeral"})
	time.Sleep(25 * time.Millisecond)

	_, ok := cache.Get(ctx, 3)
	require.False(t, ok)
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, time.Hour, 100)

	cache.Put(ctx, 9, query.RecentQuery{Question: "keep"})
	cache.SetSession(ctx, 9, map[string]any{"topic": "billing"})
	cache.Invalidate(ctx, 9)

	_, ok := cache.Get(ctx, 9)
	require.False(t, ok)
	_, ok = cache.Session(ctx, 9)
	require.False(t, ok)
}

func TestMemorySessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, time.Hour, 100)

	cache.SetSession(ctx, 5, map[string]any{"topic": "shipping"})
	data, ok := cache.Session(ctx, 5)
	require.True(t, ok)
	require.Equal(t, "shipping", data["topic"])
}

func TestMemoryStats(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, time.Hour, 100)

	cache.Put(ctx, 1, query.RecentQuery{Question: "hello"})
	cache.Get(ctx, 1)
	cache.Get(ctx, 2)

	stats := cache.Stats(ctx)
	require.Equal(t, int64(1), stats.Keys)
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
}

func TestMemorySweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	cache := newMemory(t, 5*time.Millisecond, 100)

	cache.Put(ctx, 11, query.RecentQuery{Question: "gone soon"})
	time.Sleep(10 * time.Millisecond)
	cache.sweep()

	stats := cache.Stats(ctx)
	require.Equal(t, int64(0), stats.Keys)
}
