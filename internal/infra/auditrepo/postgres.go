package auditrepo

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-assistant/internal/domain/audit"
)

// Postgres persists context-assembly audit entries. The structured sections
// are stored as jsonb; reads join the owning query row for question/answer.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Log(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	sources, err := json.Marshal(entry.ContextSources)
	if err != nil {
		return audit.Entry{}, err
	}
	details, err := json.Marshal(entry.AssemblyDetails)
	if err != nil {
		return audit.Entry{}, err
	}
	metrics, err := json.Marshal(entry.PerformanceMetrics)
	if err != nil {
		return audit.Entry{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO context_audit_logs (query_id, context_sources, matching_algorithm, assembly_details, performance_metrics, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`, entry.QueryID, sources, entry.MatchingAlgorithm, details, metrics)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return audit.Entry{}, err
	}
	return entry, nil
}

func (r *Postgres) List(ctx context.Context, filters audit.Filters) ([]audit.Entry, error) {
	sql := `
		SELECT a.id, a.query_id, a.context_sources, a.matching_algorithm, a.assembly_details, a.performance_metrics, a.created_at,
			COALESCE(q.question, ''), COALESCE(q.answer, '')
		FROM context_audit_logs a
		LEFT JOIN queries q ON q.id = a.query_id
	`
	args := []any{}
	conds := []string{}
	if filters.QueryID > 0 {
		args = append(args, filters.QueryID)
		conds = append(conds, `a.query_id = $`+strconv.Itoa(len(args)))
	}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		conds = append(conds, `a.created_at >= $`+strconv.Itoa(len(args)))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		conds = append(conds, `a.created_at <= $`+strconv.Itoa(len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			sql += ` WHERE ` + cond
		} else {
			sql += ` AND ` + cond
		}
	}
	sql += ` ORDER BY a.created_at DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			entry      audit.Entry
			rawSources []byte
			rawDetails []byte
			rawMetrics []byte
		)
		if err := rows.Scan(&entry.ID, &entry.QueryID, &rawSources, &entry.MatchingAlgorithm, &rawDetails, &rawMetrics, &entry.CreatedAt, &entry.Question, &entry.Answer); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(rawSources, &entry.ContextSources)
		_ = json.Unmarshal(rawDetails, &entry.AssemblyDetails)
		_ = json.Unmarshal(rawMetrics, &entry.PerformanceMetrics)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

var _ audit.Repository = (*Postgres)(nil)
