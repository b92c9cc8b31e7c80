package userrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-assistant/internal/domain/user"
)

// Postgres persists user accounts. Metadata lives in a jsonb column.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Create(ctx context.Context, in user.CreateInput) (user.User, error) {
	metadata, err := marshalMetadata(in.Metadata)
	if err != nil {
		return user.User{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, email, metadata, created_at, updated_at
	`, in.Name, in.Email, metadata)
	return scanUser(row)
}

func (r *Postgres) GetByID(ctx context.Context, id int64) (user.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, metadata, created_at, updated_at
		FROM users
		WHERE id = $1
		LIMIT 1
	`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}
	return u, true, nil
}

func (r *Postgres) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, metadata, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}
	return u, true, nil
}

func (r *Postgres) List(ctx context.Context, filters user.Filters) ([]user.User, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, metadata, created_at, updated_at
		FROM users
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`, limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Postgres) Update(ctx context.Context, id int64, u user.User) (user.User, bool, error) {
	metadata, err := marshalMetadata(u.Metadata)
	if err != nil {
		return user.User{}, false, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $1, email = $2, metadata = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, email, metadata, created_at, updated_at
	`, u.Name, u.Email, metadata, id)
	updated, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}
	return updated, true, nil
}

func (r *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u       user.User
		rawJSON []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &rawJSON, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	if len(rawJSON) > 0 {
		_ = json.Unmarshal(rawJSON, &u.Metadata)
	}
	return u, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return json.Marshal(metadata)
}

var _ user.Repository = (*Postgres)(nil)
