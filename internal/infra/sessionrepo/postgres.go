package sessionrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-assistant/internal/domain/session"
)

// Postgres persists sessions. Session data lives in a jsonb column and
// reads filter out expired rows.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Create(ctx context.Context, s session.Session) (session.Session, error) {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return session.Session{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, session_data, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`, s.ID, s.UserID, data, s.ExpiresAt)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

func (r *Postgres) GetByID(ctx context.Context, id string) (session.Session, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, session_data, expires_at, created_at, updated_at
		FROM sessions
		WHERE id = $1 AND expires_at > NOW()
		LIMIT 1
	`, id)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, err
	}
	return s, true, nil
}

func (r *Postgres) Update(ctx context.Context, id string, data map[string]any) (session.Session, bool, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return session.Session{}, false, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET session_data = $1, updated_at = NOW()
		WHERE id = $2 AND expires_at > NOW()
		RETURNING id, user_id, session_data, expires_at, created_at, updated_at
	`, encoded, id)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, err
	}
	return s, true, nil
}

func (r *Postgres) Extend(ctx context.Context, id string, by time.Duration) (session.Session, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET expires_at = NOW() + $1::interval, updated_at = NOW()
		WHERE id = $2 AND expires_at > NOW()
		RETURNING id, user_id, session_data, expires_at, created_at, updated_at
	`, by, id)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, err
	}
	return s, true, nil
}

func (r *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Postgres) ListByUser(ctx context.Context, userID int64) ([]session.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, session_data, expires_at, created_at, updated_at
		FROM sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *Postgres) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (session.Session, error) {
	var (
		s       session.Session
		rawJSON []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &rawJSON, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return session.Session{}, err
	}
	if len(rawJSON) > 0 {
		_ = json.Unmarshal(rawJSON, &s.Data)
	}
	return s, nil
}

var _ session.Repository = (*Postgres)(nil)
