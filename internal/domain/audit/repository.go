package audit

import "context"

// Repository persists context-assembly audit records. Writes are treated as
// best-effort by callers; a failed audit write never fails the query.
type Repository interface {
	Log(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filters Filters) ([]Entry, error)
}
