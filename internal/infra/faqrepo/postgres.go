package faqrepo

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/faq-assistant/internal/domain/faq"
)

// Postgres persists FAQ records, storing embeddings in a pgvector column.
// The column is read back as text so the domain keeps its serialized form.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Create(ctx context.Context, rec faq.Record) (faq.Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO faqs (question, answer, category, embedding, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, rec.Question, rec.Answer, rec.Category, toVector(rec.Embedding))
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return faq.Record{}, err
	}
	return rec, nil
}

func (r *Postgres) GetByID(ctx context.Context, id int64) (faq.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, question, answer, COALESCE(category, ''), COALESCE(embedding::text, ''), created_at, updated_at
		FROM faqs
		WHERE id = $1
		LIMIT 1
	`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return faq.Record{}, false, nil
		}
		return faq.Record{}, false, err
	}
	return rec, true, nil
}

func (r *Postgres) List(ctx context.Context, filters faq.Filters) ([]faq.Record, error) {
	query := `
		SELECT id, question, answer, COALESCE(category, ''), COALESCE(embedding::text, ''), created_at, updated_at
		FROM faqs
	`
	args := []any{}
	if filters.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filters.Category)
	}
	query += ` ORDER BY id ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []faq.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Postgres) Update(ctx context.Context, rec faq.Record) (faq.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE faqs
		SET question = $1, answer = $2, category = NULLIF($3, ''), embedding = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at
	`, rec.Question, rec.Answer, rec.Category, toVector(rec.Embedding), rec.ID)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return faq.Record{}, false, nil
		}
		return faq.Record{}, false, err
	}
	return rec, true, nil
}

func (r *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (faq.Record, error) {
	var rec faq.Record
	err := row.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Category, &rec.Embedding, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// toVector parses the serialized embedding into a pgvector value, or nil for
// an absent or unparseable embedding (stored as NULL).
func toVector(embedding string) any {
	if embedding == "" {
		return nil
	}
	var values []float32
	if err := json.Unmarshal([]byte(embedding), &values); err != nil || len(values) == 0 {
		return nil
	}
	return pgvector.NewVector(values)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

var _ faq.Repository = (*Postgres)(nil)
