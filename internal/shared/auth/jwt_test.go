package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, email, role string) string {
	t.Helper()
	token, err := SignJWT(Claims{
		Email: email,
		Name:  "Test",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
		},
	})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return token
}

func TestSignAndVerifyJWT(t *testing.T) {
	token := signTestToken(t, "citizen@test.com", RoleCitizen)

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify jwt: %v", err)
	}
	if claims.Email != "citizen@test.com" || claims.Role != RoleCitizen || claims.Subject != "user-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Fatalf("expected future expiry, got %v", claims.ExpiresAt)
	}
}

func TestSignJWTRejectsInvalidInput(t *testing.T) {
	if _, err := SignJWT(Claims{Role: RoleCitizen}); err == nil {
		t.Fatalf("expected error without subject")
	}
	if _, err := SignJWT(Claims{Role: RoleGuest, RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}); err == nil {
		t.Fatalf("expected error for guest role")
	}
	if _, err := SignJWT(Claims{Role: "superuser", RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestVerifyJWTRejectsTampering(t *testing.T) {
	token := signTestToken(t, "citizen@test.com", RoleCitizen)

	if _, err := VerifyJWT(token + "x"); err == nil {
		t.Fatalf("expected error for tampered token")
	}
	if _, err := VerifyJWT("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	past := time.Now().UTC().Add(-2 * time.Hour)
	token, err := SignJWT(Claims{
		Email: "citizen@test.com",
		Role:  RoleCitizen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	if _, err := VerifyJWT(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleCitizen, RoleStaff, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("expected %s to be valid", role)
		}
	}
	for _, role := range []string{RoleGuest, "", "superuser"} {
		if ValidRole(role) {
			t.Errorf("expected %s to be invalid", role)
		}
	}
}
