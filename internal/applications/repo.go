package applications

import "context"

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	Search     string // substring match against RefID, case-insensitive
	Status     string // exact status match
	Date       string // submission date, YYYY-MM-DD
	OwnerEmail string // case-insensitive owner match
}

// Repo defines persistence operations for the application registry.
// Implementations must make NextRefSeq atomic under concurrent submissions
// and must not lose concurrent updates to unrelated records.
type Repo interface {
	NextRefSeq(ctx context.Context) (int64, error)
	Create(ctx context.Context, app Application) error
	GetByRefID(ctx context.Context, refID string) (Application, error)
	List(ctx context.Context, filter Filter) ([]Application, error)
	UpdateStatus(ctx context.Context, refID, status string, review *Review) (Application, error)
	CountByStatus(ctx context.Context) (SummaryStats, error)
}
