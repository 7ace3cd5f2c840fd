package store

import (
	"os"
	"path/filepath"
	"testing"

	"examdesk/internal/client/api"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	user := api.User{ID: "u1", Name: "Ada", Email: "ada@uni.edu", Role: api.RoleStudent}
	if err := s.Save("tok-123", user); err != nil {
		t.Fatalf("save: %v", err)
	}

	token, loaded, ok := s.Load()
	if !ok {
		t.Fatalf("expected stored pair")
	}
	if token != "tok-123" {
		t.Fatalf("expected tok-123, got %q", token)
	}
	if loaded != user {
		t.Fatalf("expected %+v, got %+v", user, loaded)
	}
}

func TestClearThenLoadAbsent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("tok", api.User{ID: "u1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, _, ok := s.Load(); ok {
		t.Fatalf("expected absent after clear")
	}
}

func TestClearIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Clear(); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestLoadCorruptUserClearsBoth(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := s.Save("tok", api.User{ID: "u1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupt user file: %v", err)
	}

	if _, _, ok := s.Load(); ok {
		t.Fatalf("expected absent for corrupt user payload")
	}

	// Both keys must be gone, and a retry stays absent.
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "user.json")); !os.IsNotExist(err) {
		t.Fatalf("expected user file removed, err=%v", err)
	}
	if _, _, ok := s.Load(); ok {
		t.Fatalf("expected absent on retry")
	}
}

func TestLoadTokenWithoutUserClearsBoth(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("orphan"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}

	if _, _, ok := s.Load(); ok {
		t.Fatalf("expected absent for orphan token")
	}
	if _, ok := s.Token(); ok {
		t.Fatalf("expected token cleared")
	}
}

func TestTokenAccessor(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.Token(); ok {
		t.Fatalf("expected no token on empty store")
	}

	if err := s.Save("tok-9", api.User{ID: "u1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, ok := s.Token()
	if !ok || token != "tok-9" {
		t.Fatalf("expected tok-9, got %q ok=%v", token, ok)
	}
}
