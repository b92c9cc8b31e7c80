package queryrepo

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-assistant/internal/domain/query"
)

// Postgres persists processed queries. The assembled context snapshot lives
// in a jsonb column.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Create(ctx context.Context, rec query.Record) (query.Record, error) {
	contextUsed := rec.ContextUsed
	if len(contextUsed) == 0 {
		contextUsed = json.RawMessage("{}")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO queries (user_id, session_id, question, answer, context_used, similarity_score, response_time_ms, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`, rec.UserID, rec.SessionID, rec.Question, rec.Answer, []byte(contextUsed), rec.SimilarityScore, rec.ResponseTimeMs)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return query.Record{}, err
	}
	return rec, nil
}

func (r *Postgres) GetByID(ctx context.Context, id int64) (query.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(session_id, ''), question, answer, context_used, similarity_score, response_time_ms, created_at
		FROM queries
		WHERE id = $1
		LIMIT 1
	`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return query.Record{}, false, nil
		}
		return query.Record{}, false, err
	}
	return rec, true, nil
}

func (r *Postgres) List(ctx context.Context, filters query.Filters) ([]query.Record, error) {
	sql := `
		SELECT id, user_id, COALESCE(session_id, ''), question, answer, context_used, similarity_score, response_time_ms, created_at
		FROM queries
	`
	args := []any{}
	if filters.UserID != nil {
		sql += ` WHERE user_id = $1`
		args = append(args, *filters.UserID)
	}
	sql += ` ORDER BY created_at DESC`

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	sql += ` LIMIT $` + itoa(len(args))
	args = append(args, filters.Offset)
	sql += ` OFFSET $` + itoa(len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []query.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentByUser returns the user's latest queries newest first, in the shape
// the context assembler consumes when the recency cache misses.
func (r *Postgres) RecentByUser(ctx context.Context, userID int64, limit int) ([]query.RecentQuery, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT question, answer, similarity_score, created_at
		FROM queries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := []query.RecentQuery{}
	for rows.Next() {
		var entry query.RecentQuery
		if err := rows.Scan(&entry.Question, &entry.Answer, &entry.Similarity, &entry.Timestamp); err != nil {
			return nil, err
		}
		recent = append(recent, entry)
	}
	return recent, rows.Err()
}

func (r *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM queries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (query.Record, error) {
	var (
		rec     query.Record
		rawJSON []byte
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.SessionID, &rec.Question, &rec.Answer, &rawJSON, &rec.SimilarityScore, &rec.ResponseTimeMs, &rec.CreatedAt); err != nil {
		return query.Record{}, err
	}
	rec.ContextUsed = json.RawMessage(rawJSON)
	return rec, nil
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

var _ query.Repository = (*Postgres)(nil)
