package faq

import "context"

// Repository encapsulates persistence operations for FAQ records.
type Repository interface {
	Create(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id int64) (Record, bool, error)
	List(ctx context.Context, filters Filters) ([]Record, error)
	Update(ctx context.Context, rec Record) (Record, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
