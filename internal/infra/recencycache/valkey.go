package recencycache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-assistant/internal/domain/query"
)

// Valkey stores per-user recent queries as a capped Valkey list and the
// session snapshot as a TTL'd string key. Backend failures are logged and
// surfaced as cache misses, never as errors.
type Valkey struct {
	client     valkey.Client
	ttl        time.Duration
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
	logger     *slog.Logger
}

func NewValkey(client valkey.Client, ttl time.Duration, maxEntries int, logger *slog.Logger) *Valkey {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Valkey{
		client:     client,
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger.With("component", "recencycache.valkey"),
	}
}

func queriesKey(userID int64) string {
	return fmt.Sprintf("recent:%d", userID)
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func (v *Valkey) Put(ctx context.Context, userID int64, entry query.RecentQuery) {
	entry.Timestamp = time.Now().UTC()
	encoded, err := json.Marshal(entry)
	if err != nil {
		v.logger.Warn("recent query marshal failed", "user_id", userID, "error", err)
		return
	}

	key := queriesKey(userID)
	if err := v.client.Do(ctx, v.client.B().Lpush().Key(key).Element(string(encoded)).Build()).Error(); err != nil {
		v.logger.Warn("recent query push failed", "user_id", userID, "error", err)
		return
	}
	if err := v.client.Do(ctx, v.client.B().Ltrim().Key(key).Start(0).Stop(int64(v.maxEntries-1)).Build()).Error(); err != nil {
		v.logger.Warn("recent query trim failed", "user_id", userID, "error", err)
	}
	if err := v.client.Do(ctx, v.client.B().Expire().Key(key).Seconds(int64(v.ttl.Seconds())).Build()).Error(); err != nil {
		v.logger.Warn("recent query expire failed", "user_id", userID, "error", err)
	}
}

func (v *Valkey) Get(ctx context.Context, userID int64) ([]query.RecentQuery, bool) {
	resp := v.client.Do(ctx, v.client.B().Lrange().Key(queriesKey(userID)).Start(0).Stop(-1).Build())
	values, err := resp.AsStrSlice()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			v.logger.Warn("recent query fetch failed", "user_id", userID, "error", err)
		}
		v.misses.Add(1)
		return nil, false
	}
	if len(values) == 0 {
		v.misses.Add(1)
		return nil, false
	}

	entries := make([]query.RecentQuery, 0, len(values))
	for _, raw := range values {
		var entry query.RecentQuery
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			v.logger.Warn("recent query decode failed", "user_id", userID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	v.hits.Add(1)
	return entries, true
}

func (v *Valkey) SetSession(ctx context.Context, userID int64, data map[string]any) {
	encoded, err := json.Marshal(data)
	if err != nil {
		v.logger.Warn("session marshal failed", "user_id", userID, "error", err)
		return
	}
	cmd := v.client.B().Set().Key(sessionKey(userID)).Value(string(encoded)).Ex(v.ttl).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		v.logger.Warn("session store failed", "user_id", userID, "error", err)
	}
}

func (v *Valkey) Session(ctx context.Context, userID int64) (map[string]any, bool) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(sessionKey(userID)).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			v.logger.Warn("session fetch failed", "user_id", userID, "error", err)
		}
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		v.logger.Warn("session decode failed", "user_id", userID, "error", err)
		return nil, false
	}
	return data, true
}

func (v *Valkey) Invalidate(ctx context.Context, userID int64) {
	cmd := v.client.B().Del().Key(queriesKey(userID), sessionKey(userID)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		v.logger.Warn("cache invalidate failed", "user_id", userID, "error", err)
	}
}

func (v *Valkey) Stats(ctx context.Context) query.CacheStats {
	stats := query.CacheStats{
		Hits:   v.hits.Load(),
		Misses: v.misses.Load(),
	}
	keys, err := v.client.Do(ctx, v.client.B().Dbsize().Build()).AsInt64()
	if err != nil {
		v.logger.Warn("cache size fetch failed", "error", err)
		return stats
	}
	stats.Keys = keys
	return stats
}

var _ query.RecencyCache = (*Valkey)(nil)
