package audit

import "context"

// Repo persists audit events. Append must never mutate existing entries.
type Repo interface {
	Append(ctx context.Context, ev Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
