package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"patta-backend/internal/queue"
)

type fakeQueue struct {
	sent []queue.Message
	err  error
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestRecordAppendsAndFansOut(t *testing.T) {
	repo := NewMemoryRepo()
	q := &fakeQueue{}
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, q, func() time.Time { return now })
	ctx := context.Background()

	svc.Record(ctx, "application.submitted", "citizen@test.com", "citizen", "PATTA-20260110-0001", map[string]any{"district": "Chennai"})

	events, err := svc.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if ev.Action != "application.submitted" || ev.TargetID != "PATTA-20260110-0001" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if !ev.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, ev.CreatedAt)
	}

	if len(q.sent) != 1 {
		t.Fatalf("expected 1 queued message, got %d", len(q.sent))
	}
	if q.sent[0].Action != "application.submitted" || q.sent[0].OccurredAt != now.Format(time.RFC3339) {
		t.Fatalf("unexpected queue message %+v", q.sent[0])
	}
}

func TestRecordSurvivesQueueFailure(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, &fakeQueue{err: errors.New("sqs down")}, nil)
	ctx := context.Background()

	// Must not panic or drop the trail entry.
	svc.Record(ctx, "user.role_changed", "admin@test.com", "admin", "user-1", nil)

	events, err := svc.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event despite queue failure, got %d", len(events))
	}
}

func TestListRecentNewestFirstAndLimited(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	svc.Record(ctx, "first", "a@test.com", "staff", "", nil)
	svc.Record(ctx, "second", "a@test.com", "staff", "", nil)
	svc.Record(ctx, "third", "a@test.com", "staff", "", nil)

	events, err := svc.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != "third" || events[1].Action != "second" {
		t.Fatalf("expected newest first, got %+v", events)
	}
}
