package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patta-backend/internal/queue"
	"patta-backend/internal/shared/telemetry"
)

// Service writes the audit trail and optionally fans events out to a queue.
// Recording is best-effort by contract: a failed append or send is logged and
// swallowed so the operation being audited still succeeds.
type Service struct {
	Repo  Repo
	Queue queue.Client // nil disables fan-out
	Now   func() time.Time
}

// NewService wires an audit service. now may be nil.
func NewService(repo Repo, q queue.Client, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{Repo: repo, Queue: q, Now: now}
}

// Record appends one event to the trail.
func (s *Service) Record(ctx context.Context, action, actorEmail, actorRole, targetID string, details map[string]any) {
	ev := Event{
		ID:         uuid.NewString(),
		Action:     action,
		ActorEmail: actorEmail,
		ActorRole:  actorRole,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  s.Now().UTC(),
	}

	if err := s.Repo.Append(ctx, ev); err != nil {
		telemetry.Error("audit.append_failed", map[string]any{
			"action": action,
			"target": targetID,
			"error":  err.Error(),
		})
	}

	if s.Queue == nil {
		return
	}
	msg := queue.Message{
		Action:     ev.Action,
		ActorEmail: ev.ActorEmail,
		ActorRole:  ev.ActorRole,
		TargetID:   ev.TargetID,
		OccurredAt: ev.CreatedAt.Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Warn("audit.queue_send_failed", map[string]any{
			"action": action,
			"error":  err.Error(),
		})
	}
}

// ListRecent returns up to limit trail entries, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return s.Repo.ListRecent(ctx, limit)
}
