package query

import "context"

// Filters narrows query listings.
type Filters struct {
	UserID *int64
	Limit  int
	Offset int
}

// Repository encapsulates persistence operations for query records.
type Repository interface {
	Create(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id int64) (Record, bool, error)
	List(ctx context.Context, filters Filters) ([]Record, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]RecentQuery, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
