package auth

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("user_123", "ali")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	principal, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if principal != "user_123" {
		t.Errorf("expected principal user_123, got %s", principal)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, err := issuer.Generate("user_123", "ali")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate("user_123", "ali")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	if _, err := manager.Validate("not.a.token"); err == nil {
		t.Error("expected validation to fail for malformed token")
	}
}
