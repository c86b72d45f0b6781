package audit

import (
	"context"
	"sync"
)

// MemoryRepo keeps the trail in memory, newest last.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRepo constructs an empty in-memory trail.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Append records one event.
func (r *MemoryRepo) Append(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// ListRecent returns up to limit events, newest first.
func (r *MemoryRepo) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]Event, 0, limit)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
