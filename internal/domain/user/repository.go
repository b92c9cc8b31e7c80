package user

import "context"

// Repository encapsulates persistence operations for users.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (User, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	List(ctx context.Context, filters Filters) ([]User, error)
	Update(ctx context.Context, id int64, u User) (User, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
