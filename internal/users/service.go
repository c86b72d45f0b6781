package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"patta-backend/internal/shared/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// AuditRecorder receives account events. Same best-effort contract as the
// registry: a failed record never fails the operation.
type AuditRecorder interface {
	Record(ctx context.Context, action, actorEmail, actorRole, targetID string, details map[string]any)
}

type Service struct {
	Repo  Repo
	Audit AuditRecorder
}

func NewService(repo Repo, audit AuditRecorder) *Service {
	return &Service{Repo: repo, Audit: audit}
}

// Authenticate checks an email/password pair against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromOAuth persists an OAuth identity. First-time accounts start as
// citizens; returning accounts keep whatever role an admin assigned.
func (s *Service) UpsertFromOAuth(ctx context.Context, email, name string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, errors.New("email is required")
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Name = name
		existing.Provider = ProviderGoogle
		if err := s.Repo.Upsert(ctx, existing); err != nil {
			return User{}, err
		}
		return existing, nil
	case errors.Is(err, ErrNotFound):
		user := User{
			ID:       uuid.NewString(),
			Email:    email,
			Name:     name,
			Role:     auth.RoleCitizen,
			Provider: ProviderGoogle,
		}
		if err := s.Repo.Upsert(ctx, user); err != nil {
			return User{}, err
		}
		s.record(ctx, "user.registered", email, user.Role, user.ID, map[string]any{"provider": ProviderGoogle})
		return user, nil
	default:
		return User{}, err
	}
}

// GetByID returns the account for userID.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.Repo.List(ctx)
}

// RoleCounts returns how many accounts hold each role.
func (s *Service) RoleCounts(ctx context.Context) (map[string]int, error) {
	return s.Repo.CountByRole(ctx)
}

// UpdateRole assigns a new role to an account. Only assignable roles are
// accepted; guest is a resolution, not an assignment.
func (s *Service) UpdateRole(ctx context.Context, actorEmail, actorRole, userID, role string) (User, error) {
	if !auth.ValidRole(role) {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	user, err := s.Repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, "user.role_changed", actorEmail, actorRole, userID, map[string]any{
		"email": user.Email,
		"role":  role,
	})
	return user, nil
}

func (s *Service) record(ctx context.Context, action, actorEmail, actorRole, targetID string, details map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, action, actorEmail, actorRole, targetID, details)
}
