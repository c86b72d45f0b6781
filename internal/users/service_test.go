package users

import (
	"context"
	"errors"
	"testing"

	"patta-backend/internal/shared/auth"
)

func seedRepo(t *testing.T) Repo {
	t.Helper()
	repo := NewMemoryRepo()
	err := SeedUsers(context.Background(), repo, []string{
		"citizen@test.com:123456:citizen",
		"staff@test.com:123456:staff",
	})
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return repo
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(seedRepo(t), nil)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "citizen@test.com", "123456")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != auth.RoleCitizen {
		t.Fatalf("expected citizen role, got %s", user.Role)
	}

	// Email match is case-insensitive.
	if _, err := svc.Authenticate(ctx, "CITIZEN@test.com", "123456"); err != nil {
		t.Fatalf("authenticate mixed case: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "citizen@test.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@test.com", "123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestSeedUsersIsIdempotent(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	// Promote the citizen, then re-seed; the role must survive.
	user, err := repo.GetByEmail(ctx, "citizen@test.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if _, err := repo.UpdateRole(ctx, user.ID, auth.RoleStaff); err != nil {
		t.Fatalf("update role: %v", err)
	}

	if err := SeedUsers(ctx, repo, []string{"citizen@test.com:123456:citizen"}); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	after, err := repo.GetByEmail(ctx, "citizen@test.com")
	if err != nil {
		t.Fatalf("get after re-seed: %v", err)
	}
	if after.Role != auth.RoleStaff {
		t.Fatalf("expected re-seed to leave existing account alone, role is %s", after.Role)
	}
}

func TestRoleCounts(t *testing.T) {
	svc := NewService(seedRepo(t), nil)
	ctx := context.Background()

	counts, err := svc.RoleCounts(ctx)
	if err != nil {
		t.Fatalf("role counts: %v", err)
	}
	if counts[auth.RoleCitizen] != 1 || counts[auth.RoleStaff] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	// A role change moves the account between buckets.
	user, err := svc.Repo.GetByEmail(ctx, "citizen@test.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if _, err := svc.Repo.UpdateRole(ctx, user.ID, auth.RoleStaff); err != nil {
		t.Fatalf("update role: %v", err)
	}
	counts, err = svc.RoleCounts(ctx)
	if err != nil {
		t.Fatalf("role counts after promotion: %v", err)
	}
	if counts[auth.RoleCitizen] != 0 || counts[auth.RoleStaff] != 2 {
		t.Fatalf("unexpected counts after promotion %v", counts)
	}
}

func TestUpsertFromOAuth(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil)
	ctx := context.Background()

	// First login creates a citizen account.
	user, err := svc.UpsertFromOAuth(ctx, "new@gmail.com", "New User")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.Role != auth.RoleCitizen || user.Provider != ProviderGoogle {
		t.Fatalf("expected new citizen google account, got %+v", user)
	}

	// Role assigned by an admin survives the next login.
	if _, err := svc.Repo.UpdateRole(ctx, user.ID, auth.RoleStaff); err != nil {
		t.Fatalf("update role: %v", err)
	}
	again, err := svc.UpsertFromOAuth(ctx, "new@gmail.com", "Renamed User")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.Role != auth.RoleStaff {
		t.Fatalf("expected staff role to survive login, got %s", again.Role)
	}
	if again.Name != "Renamed User" {
		t.Fatalf("expected name refresh, got %s", again.Name)
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	svc := NewService(seedRepo(t), nil)
	ctx := context.Background()

	user, err := svc.Repo.GetByEmail(ctx, "citizen@test.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}

	if _, err := svc.UpdateRole(ctx, "admin@test.com", auth.RoleAdmin, user.ID, "guest"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole for guest, got %v", err)
	}
	if _, err := svc.UpdateRole(ctx, "admin@test.com", auth.RoleAdmin, "missing-id", auth.RoleStaff); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	updated, err := svc.UpdateRole(ctx, "admin@test.com", auth.RoleAdmin, user.ID, auth.RoleStaff)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != auth.RoleStaff {
		t.Fatalf("expected staff, got %s", updated.Role)
	}
}
