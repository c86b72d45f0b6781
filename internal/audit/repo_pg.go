package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRepo stores the trail in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Append records one event.
func (r *PGRepo) Append(ctx context.Context, ev Event) error {
	const query = `
INSERT INTO audit_events (id, action, actor_email, actor_role, target_id, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var details []byte
	if len(ev.Details) > 0 {
		var err error
		details, err = json.Marshal(ev.Details)
		if err != nil {
			return fmt.Errorf("encode details: %w", err)
		}
	}

	_, err := r.DB.ExecContext(ctx, query, ev.ID, ev.Action, ev.ActorEmail, ev.ActorRole, nullString(ev.TargetID), details, ev.CreatedAt)
	return err
}

// ListRecent returns up to limit events, newest first.
func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	const query = `
SELECT id, action, actor_email, actor_role, target_id, details, created_at
FROM audit_events
ORDER BY created_at DESC
LIMIT $1`

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev       Event
			targetID sql.NullString
			details  []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Action, &ev.ActorEmail, &ev.ActorRole, &targetID, &details, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.TargetID = targetID.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &ev.Details); err != nil {
				return nil, fmt.Errorf("decode details: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
