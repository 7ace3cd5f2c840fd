package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	signed, err := GenerateAccessToken("test-secret", "user-1", "session-1", "student", 15*time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseAccessToken(signed, "test-secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", claims.UserID)
	}
	if claims.SessionID != "session-1" {
		t.Fatalf("expected session-1, got %s", claims.SessionID)
	}
	if claims.Role != "student" {
		t.Fatalf("expected student, got %s", claims.Role)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	signed, err := GenerateAccessToken("test-secret", "user-1", "session-1", "student", 15*time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseAccessToken(signed, "other-secret"); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	signed, err := GenerateAccessToken("test-secret", "user-1", "session-1", "student", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseAccessToken(signed, "test-secret"); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestSessionTokenHashStable(t *testing.T) {
	a := HashSessionToken("token-aaa")
	b := HashSessionToken("token-aaa")
	if string(a) != string(b) {
		t.Fatalf("hash must be deterministic")
	}
	if string(a) == string(HashSessionToken("token-bbb")) {
		t.Fatalf("distinct tokens must not collide")
	}
}
