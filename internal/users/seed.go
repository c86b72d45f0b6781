package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/telemetry"
)

// SeedUsers creates password accounts from "email:password:role" entries.
// Existing accounts are left untouched so a redeploy never resets passwords
// or roles. Intended for development and demo environments.
func SeedUsers(ctx context.Context, repo Repo, entries []string) error {
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("malformed seed entry %q, want email:password:role", entry)
		}
		email, password, role := strings.TrimSpace(parts[0]), parts[1], strings.TrimSpace(parts[2])
		if !auth.ValidRole(role) {
			return fmt.Errorf("seed entry %q: invalid role %q", email, role)
		}

		if _, err := repo.GetByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed lookup %q: %w", email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		user := User{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         nameFromEmail(email),
			Role:         role,
			PasswordHash: string(hash),
			Provider:     ProviderPassword,
		}
		if err := repo.Upsert(ctx, user); err != nil {
			return fmt.Errorf("seed user %q: %w", email, err)
		}
		telemetry.Info("users.seeded", map[string]any{"email": email, "role": role})
	}
	return nil
}

func nameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(local, '@'); i > 0 {
		local = local[:i]
	}
	if local == "" {
		return email
	}
	return strings.ToUpper(local[:1]) + local[1:]
}
