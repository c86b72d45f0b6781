package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres. Reference-id allocation rides on a
// database sequence, so concurrent submissions can never collide, and status
// updates touch single rows instead of rewriting the collection.
type PGRepo struct {
	DB *sql.DB
}

const appColumns = `ref_id, ref_seq, owner_email, district, taluk, village, survey_no, subdiv_no, boundary, documents, status, reviewer_email, reviewer_name, reviewer_role, reviewed_at, submitted_at`

// NextRefSeq allocates the next value of the application sequence.
func (r *PGRepo) NextRefSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.DB.QueryRowContext(ctx, `SELECT nextval('application_ref_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next ref seq: %w", err)
	}
	return seq, nil
}

// Create inserts a new application record.
func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (
    ref_id,
    ref_seq,
    owner_email,
    district,
    taluk,
    village,
    survey_no,
    subdiv_no,
    boundary,
    documents,
    status,
    submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	encoded, err := encodeBoundary(app.Boundary)
	if err != nil {
		return err
	}
	// A typed-nil []byte and untyped nil both bind as SQL NULL; pass the
	// latter so driver-level comparisons treat the absent boundary as NULL.
	var boundary any
	if encoded != nil {
		boundary = encoded
	}
	documents, err := json.Marshal(app.Documents)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		app.RefID,
		app.RefSeq,
		app.OwnerEmail,
		app.District,
		app.Taluk,
		app.Village,
		app.SurveyNo,
		app.SubdivNo,
		boundary,
		documents,
		app.Status,
		app.SubmittedAt,
	)
	return err
}

// GetByRefID fetches a single record.
func (r *PGRepo) GetByRefID(ctx context.Context, refID string) (Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE ref_id = $1`
	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, refID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

// List returns matching records, newest submissions first.
func (r *PGRepo) List(ctx context.Context, filter Filter) ([]Application, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OwnerEmail != "" {
		conds = append(conds, "lower(owner_email) = lower("+arg(filter.OwnerEmail)+")")
	}
	if filter.Search != "" {
		conds = append(conds, "ref_id ILIKE "+arg("%"+filter.Search+"%"))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Date != "" {
		conds = append(conds, "to_char(submitted_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') = "+arg(filter.Date))
	}

	query := `SELECT ` + appColumns + ` FROM applications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY submitted_at DESC, ref_seq DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status and review columns for one row.
func (r *PGRepo) UpdateStatus(ctx context.Context, refID, status string, review *Review) (Application, error) {
	const query = `
UPDATE applications
SET status = $1, reviewer_email = $2, reviewer_name = $3, reviewer_role = $4, reviewed_at = $5
WHERE ref_id = $6
RETURNING ` + appColumns

	var (
		reviewerEmail sql.NullString
		reviewerName  sql.NullString
		reviewerRole  sql.NullString
		reviewedAt    sql.NullTime
	)
	if review != nil {
		reviewerEmail = sql.NullString{String: review.ReviewerEmail, Valid: true}
		reviewerName = sql.NullString{String: review.ReviewerName, Valid: true}
		reviewerRole = sql.NullString{String: review.ReviewerRole, Valid: true}
		reviewedAt = sql.NullTime{Time: review.ReviewedAt, Valid: true}
	}

	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, status, reviewerEmail, reviewerName, reviewerRole, reviewedAt, refID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

// CountByStatus returns aggregate counts for the whole registry.
func (r *PGRepo) CountByStatus(ctx context.Context) (SummaryStats, error) {
	const query = `
SELECT
    count(*),
    count(*) FILTER (WHERE status = 'pending'),
    count(*) FILTER (WHERE status = 'approved'),
    count(*) FILTER (WHERE status = 'rejected')
FROM applications`

	var stats SummaryStats
	err := r.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected)
	if err != nil {
		return SummaryStats{}, err
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		app           Application
		boundary      []byte
		documents     []byte
		reviewerEmail sql.NullString
		reviewerName  sql.NullString
		reviewerRole  sql.NullString
		reviewedAt    sql.NullTime
	)
	err := row.Scan(
		&app.RefID,
		&app.RefSeq,
		&app.OwnerEmail,
		&app.District,
		&app.Taluk,
		&app.Village,
		&app.SurveyNo,
		&app.SubdivNo,
		&boundary,
		&documents,
		&app.Status,
		&reviewerEmail,
		&reviewerName,
		&reviewerRole,
		&reviewedAt,
		&app.SubmittedAt,
	)
	if err != nil {
		return Application{}, err
	}

	if len(boundary) > 0 {
		if err := json.Unmarshal(boundary, &app.Boundary); err != nil {
			return Application{}, fmt.Errorf("decode boundary: %w", err)
		}
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &app.Documents); err != nil {
			return Application{}, fmt.Errorf("decode documents: %w", err)
		}
	}
	if reviewerEmail.Valid {
		app.Review = &Review{
			ReviewerEmail: reviewerEmail.String,
			ReviewerName:  reviewerName.String,
			ReviewerRole:  reviewerRole.String,
			ReviewedAt:    reviewedAt.Time,
		}
	}
	return app, nil
}

func encodeBoundary(points []GeoPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("encode boundary: %w", err)
	}
	return data, nil
}

var _ Repo = (*PGRepo)(nil)
