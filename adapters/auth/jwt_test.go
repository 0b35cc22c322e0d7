package auth

import (
	"testing"
	"time"

	"github.com/artpar/launchpad/domain/account"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateToken("u1", "u1@example.com", account.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, want future", expiresAt)
	}

	id, ok := svc.Verify(token)
	if !ok {
		t.Fatal("Verify() rejected a freshly issued token")
	}
	if id.UserID != "u1" || id.Email != "u1@example.com" || id.Role != account.RoleAdmin {
		t.Errorf("identity = %+v, want u1/admin", id)
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken("u1", "u1@example.com", account.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, ok := verifier.Verify(token); ok {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	if _, ok := svc.Verify("not-a-token"); ok {
		t.Error("Verify() accepted garbage")
	}
}
