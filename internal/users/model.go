package users

import "time"

// Providers record how an account was created.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User is a portal account. PasswordHash is empty for OAuth-only accounts and
// is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
