package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/server/respond"
)

const (
	identityIDKey    = "identityId"
	identityEmailKey = "identityEmail"
	identityNameKey  = "identityName"
	identityRoleKey  = "identityRole"
)

// Identity is the caller identity resolved by the Auth middleware.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// Auth resolves the caller identity from a Bearer token. Requests without a
// token pass through as role guest; role checks happen per route.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Set(identityRoleKey, auth.RoleGuest)
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(identityIDKey, claims.Subject)
		c.Set(identityEmailKey, claims.Email)
		c.Set(identityNameKey, claims.Name)
		c.Set(identityRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles aborts with 401/403 unless the caller holds one of the roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		id := IdentityFromContext(c)
		if id.Role == auth.RoleGuest || id.Role == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// IdentityFromContext fetches the identity set by the Auth middleware.
func IdentityFromContext(c *gin.Context) Identity {
	if c == nil {
		return Identity{Role: auth.RoleGuest}
	}
	id := Identity{
		ID:    c.GetString(identityIDKey),
		Email: c.GetString(identityEmailKey),
		Name:  c.GetString(identityNameKey),
		Role:  c.GetString(identityRoleKey),
	}
	if id.Role == "" {
		id.Role = auth.RoleGuest
	}
	return id
}
