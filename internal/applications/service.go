package applications

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/storage/object"
	"patta-backend/internal/shared/telemetry"
	"patta-backend/internal/shared/util"
)

// Actor identifies who is performing a registry operation.
type Actor struct {
	Email string
	Name  string
	Role  string
}

// AuditRecorder receives registry events. Recording is best-effort; the
// registry never fails an operation because the trail could not be written.
type AuditRecorder interface {
	Record(ctx context.Context, action, actorEmail, actorRole, targetID string, details map[string]any)
}

// DocumentUpload is one incoming file for a mandatory category.
type DocumentUpload struct {
	FileName string
	Reader   io.Reader
}

// SubmitInput carries everything needed to register a new application.
type SubmitInput struct {
	District  string
	Taluk     string
	Village   string
	SurveyNo  string
	SubdivNo  string
	Boundary  []GeoPoint
	Documents map[string]DocumentUpload // keyed by category
}

// Service implements the application registry workflows on top of a Repo and
// an ObjectStore.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Audit AuditRecorder
	Now   func() time.Time
}

// NewService wires a registry service. now may be nil, in which case the
// system clock is used.
func NewService(repo Repo, store object.ObjectStore, audit AuditRecorder, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{Repo: repo, Store: store, Audit: audit, Now: now}
}

// Submit registers a new application for the acting citizen. All five
// document categories are mandatory; any missing or empty one fails the whole
// submission before anything is stored. If the record cannot be persisted
// after files were written, the files are removed again so no orphans remain.
func (s *Service) Submit(ctx context.Context, actor Actor, in SubmitInput) (Application, error) {
	if actor.Role != auth.RoleCitizen {
		return Application{}, fmt.Errorf("%w: only citizens can submit applications", ErrUnauthorized)
	}
	if actor.Email == "" {
		return Application{}, fmt.Errorf("%w: missing submitter identity", ErrUnauthorized)
	}

	if in.District == "" || in.Taluk == "" || in.Village == "" || in.SurveyNo == "" {
		return Application{}, fmt.Errorf("%w: district, taluk, village and surveyNo are required", ErrInvalidInput)
	}
	if err := validateBoundary(in.Boundary); err != nil {
		return Application{}, err
	}
	for _, category := range DocumentCategories {
		doc, ok := in.Documents[category]
		if !ok || doc.Reader == nil {
			return Application{}, fmt.Errorf("%w: missing document %s", ErrInvalidInput, category)
		}
		if doc.FileName == "" {
			return Application{}, fmt.Errorf("%w: missing file name for %s", ErrInvalidInput, category)
		}
	}
	for category := range in.Documents {
		if !ValidCategory(category) {
			return Application{}, fmt.Errorf("%w: unknown document category %s", ErrInvalidInput, category)
		}
	}

	seq, err := s.Repo.NextRefSeq(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	now := s.Now().UTC()
	refID := FormatRefID(now, seq)

	stored := make(map[string]string, len(DocumentCategories))
	cleanup := func() {
		for _, key := range stored {
			if rerr := s.Store.Remove(ctx, key); rerr != nil {
				telemetry.Warn("submit.cleanup_failed", map[string]any{"key": key, "error": rerr.Error()})
			}
		}
	}

	for _, category := range DocumentCategories {
		doc := in.Documents[category]
		sanitized, err := util.SanitizeFileName(doc.FileName)
		if err != nil {
			cleanup()
			return Application{}, fmt.Errorf("%w: invalid file name for %s", ErrInvalidInput, category)
		}
		key, size, mime, err := s.Store.Save(ctx, refID, category+"_"+sanitized, doc.Reader)
		if err != nil {
			cleanup()
			return Application{}, fmt.Errorf("%w: store %s: %v", ErrStorage, category, err)
		}
		stored[category] = key
		telemetry.Info("document.stored", map[string]any{
			"applicationRefId": refID,
			"category":         category,
			"sizeBytes":        size,
			"mimeType":         mime,
		})
	}

	app := Application{
		RefID:       refID,
		RefSeq:      seq,
		OwnerEmail:  actor.Email,
		District:    in.District,
		Taluk:       in.Taluk,
		Village:     in.Village,
		SurveyNo:    in.SurveyNo,
		SubdivNo:    in.SubdivNo,
		Boundary:    in.Boundary,
		Documents:   stored,
		Status:      StatusPending,
		SubmittedAt: now,
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		cleanup()
		return Application{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.record(ctx, "application.submitted", actor, refID, map[string]any{
		"district": in.District,
		"village":  in.Village,
	})
	return app, nil
}

// List returns applications visible to the actor. Citizens always see only
// their own records regardless of requested filters; staff and admins may
// filter freely. Guests see nothing.
func (s *Service) List(ctx context.Context, actor Actor, filter Filter) ([]Application, error) {
	switch actor.Role {
	case auth.RoleCitizen:
		filter = Filter{OwnerEmail: actor.Email}
	case auth.RoleStaff, auth.RoleAdmin:
		// filters pass through
	default:
		return nil, fmt.Errorf("%w: sign in to view applications", ErrUnauthorized)
	}

	apps, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return apps, nil
}

// Get returns one application. Citizens can only read their own records.
func (s *Service) Get(ctx context.Context, actor Actor, refID string) (Application, error) {
	app, err := s.fetch(ctx, refID)
	if err != nil {
		return Application{}, err
	}
	if err := s.authorizeRead(actor, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// UpdateStatus moves an application to the given status. Approving or
// rejecting attaches the acting reviewer; moving back to pending clears the
// review entirely. Every transition lands in the audit trail, including
// repeat decisions on already-reviewed records.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, refID, status string) (Application, error) {
	if actor.Role != auth.RoleStaff && actor.Role != auth.RoleAdmin {
		return Application{}, fmt.Errorf("%w: only staff can review applications", ErrUnauthorized)
	}
	if !ValidStatus(status) {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	prev, err := s.fetch(ctx, refID)
	if err != nil {
		return Application{}, err
	}

	var review *Review
	if status != StatusPending {
		review = &Review{
			ReviewerEmail: actor.Email,
			ReviewerName:  actor.Name,
			ReviewerRole:  actor.Role,
			ReviewedAt:    s.Now().UTC(),
		}
	}

	app, err := s.Repo.UpdateStatus(ctx, refID, status, review)
	if err != nil {
		if err == ErrNotFound {
			return Application{}, err
		}
		return Application{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.record(ctx, "application.status_changed", actor, refID, map[string]any{
		"from": prev.Status,
		"to":   status,
	})
	return app, nil
}

// OpenDocument streams one stored document of an application. The same
// visibility rules as Get apply.
func (s *Service) OpenDocument(ctx context.Context, actor Actor, refID, category string) (io.ReadCloser, string, error) {
	if !ValidCategory(category) {
		return nil, "", fmt.Errorf("%w: unknown document category %s", ErrInvalidInput, category)
	}
	app, err := s.fetch(ctx, refID)
	if err != nil {
		return nil, "", err
	}
	if err := s.authorizeRead(actor, app); err != nil {
		return nil, "", err
	}

	key, ok := app.Documents[category]
	if !ok {
		return nil, "", ErrNotFound
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("%w: open %s: %v", ErrStorage, category, err)
	}
	return rc, key, nil
}

// Stats returns registry-wide counts.
func (s *Service) Stats(ctx context.Context) (SummaryStats, error) {
	stats, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return SummaryStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return stats, nil
}

func (s *Service) fetch(ctx context.Context, refID string) (Application, error) {
	if !ValidRefID(refID) {
		return Application{}, fmt.Errorf("%w: malformed reference id", ErrInvalidInput)
	}
	app, err := s.Repo.GetByRefID(ctx, refID)
	if err != nil {
		if err == ErrNotFound {
			return Application{}, err
		}
		return Application{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return app, nil
}

func (s *Service) authorizeRead(actor Actor, app Application) error {
	switch actor.Role {
	case auth.RoleStaff, auth.RoleAdmin:
		return nil
	case auth.RoleCitizen:
		if strings.EqualFold(app.OwnerEmail, actor.Email) {
			return nil
		}
	}
	return fmt.Errorf("%w: not your application", ErrUnauthorized)
}

func (s *Service) record(ctx context.Context, action string, actor Actor, targetID string, details map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, action, actor.Email, actor.Role, targetID, details)
}

func validateBoundary(points []GeoPoint) error {
	if len(points) == 0 {
		return nil
	}
	if len(points) < 3 {
		return fmt.Errorf("%w: boundary needs at least 3 points", ErrInvalidInput)
	}
	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("%w: boundary point out of range", ErrInvalidInput)
		}
	}
	return nil
}
