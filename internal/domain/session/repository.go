package session

import (
	"context"
	"time"
)

// Repository encapsulates persistence operations for sessions. Reads only
// ever return unexpired sessions.
type Repository interface {
	Create(ctx context.Context, s Session) (Session, error)
	GetByID(ctx context.Context, id string) (Session, bool, error)
	Update(ctx context.Context, id string, data map[string]any) (Session, bool, error)
	Extend(ctx context.Context, id string, by time.Duration) (Session, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Session, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
