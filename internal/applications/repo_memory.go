package applications

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo keeps the whole registry in memory behind one mutex, optionally
// mirrored to a JSON file. The single mutex is what makes the whole-collection
// read-modify-write pattern safe: reference-id allocation and status updates
// serialize through it.
type MemoryRepo struct {
	mu      sync.Mutex
	apps    []Application
	nextSeq int64
	path    string // empty means no file backing
}

type snapshot struct {
	Applications []Application `json:"applications"`
	NextRefSeq   int64         `json:"nextRefSeq"`
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextSeq: 1}
}

// NewFileRepo constructs a repo mirrored to a JSON file at path. Existing
// records are loaded and the sequence resumes from the highest allocated
// value, never from a fixed seed.
func NewFileRepo(path string) (*MemoryRepo, error) {
	r := &MemoryRepo{nextSeq: 1, path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode registry file: %w", err)
	}

	r.apps = snap.Applications
	r.nextSeq = snap.NextRefSeq
	for _, app := range r.apps {
		if app.RefSeq >= r.nextSeq {
			r.nextSeq = app.RefSeq + 1
		}
	}
	if r.nextSeq < 1 {
		r.nextSeq = 1
	}
	return r, nil
}

// NextRefSeq atomically allocates the next sequence value.
func (r *MemoryRepo) NextRefSeq(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.nextSeq
	r.nextSeq++
	if err := r.persistLocked(); err != nil {
		r.nextSeq = seq
		return 0, err
	}
	return seq, nil
}

// Create appends a new record. The write is flushed before Create returns.
func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.apps {
		if existing.RefID == app.RefID {
			return fmt.Errorf("duplicate ref id %s", app.RefID)
		}
	}

	r.apps = append(r.apps, app)
	if err := r.persistLocked(); err != nil {
		r.apps = r.apps[:len(r.apps)-1]
		return err
	}
	return nil
}

// GetByRefID returns the record with the given reference id.
func (r *MemoryRepo) GetByRefID(ctx context.Context, refID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, app := range r.apps {
		if app.RefID == refID {
			return app, nil
		}
	}
	return Application{}, ErrNotFound
}

// List returns matching records ordered by submission time, newest first.
func (r *MemoryRepo) List(ctx context.Context, filter Filter) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Application, 0, len(r.apps))
	for _, app := range r.apps {
		if matches(app, filter) {
			out = append(out, app)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].RefSeq > out[j].RefSeq
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// UpdateStatus sets the status and review for one record. Passing a nil
// review clears any previous one (the record is pending again).
func (r *MemoryRepo) UpdateStatus(ctx context.Context, refID, status string, review *Review) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.apps {
		if r.apps[i].RefID != refID {
			continue
		}
		prev := r.apps[i]
		r.apps[i].Status = status
		r.apps[i].Review = review
		if err := r.persistLocked(); err != nil {
			r.apps[i] = prev
			return Application{}, err
		}
		return r.apps[i], nil
	}
	return Application{}, ErrNotFound
}

// CountByStatus returns aggregate counts for the whole registry.
func (r *MemoryRepo) CountByStatus(ctx context.Context) (SummaryStats, error) {
	if err := ctx.Err(); err != nil {
		return SummaryStats{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats SummaryStats
	for _, app := range r.apps {
		stats.Total++
		switch app.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func matches(app Application, f Filter) bool {
	if f.OwnerEmail != "" && !strings.EqualFold(app.OwnerEmail, f.OwnerEmail) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToUpper(app.RefID), strings.ToUpper(f.Search)) {
		return false
	}
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	if f.Date != "" && app.SubmittedAt.UTC().Format("2006-01-02") != f.Date {
		return false
	}
	return true
}

// persistLocked writes the full snapshot via temp-file rename so a crash
// mid-write never corrupts the registry. Callers must hold r.mu.
func (r *MemoryRepo) persistLocked() error {
	if r.path == "" {
		return nil
	}

	snap := snapshot{Applications: r.apps, NextRefSeq: r.nextSeq}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir registry dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("create temp registry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close registry: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename registry: %w", err)
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
