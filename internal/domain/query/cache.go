package query

import "context"

// CacheStats summarizes recency cache activity.
type CacheStats struct {
	Keys   int64 `json:"keys"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// RecencyCache holds a bounded, expiring, newest-first list of recent
// queries per user, plus a session snapshot. It is a read-through
// acceleration only: Get distinguishes a miss (second return false, consult
// the persistent store) from a genuine hit with zero or more entries.
// Implementations must tolerate concurrent use across users and never
// surface backend failures to callers.
type RecencyCache interface {
	Put(ctx context.Context, userID int64, entry RecentQuery)
	Get(ctx context.Context, userID int64) ([]RecentQuery, bool)
	SetSession(ctx context.Context, userID int64, data map[string]any)
	Session(ctx context.Context, userID int64) (map[string]any, bool)
	Invalidate(ctx context.Context, userID int64)
	Stats(ctx context.Context) CacheStats
}
