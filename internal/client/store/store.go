package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"examdesk/internal/client/api"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// FileStore persists the session credential pair across process restarts:
// the opaque token and the serialized user record. The two are written
// together and cleared together; a half-present or corrupt pair is treated
// as absent and wiped so it cannot be restored.
type FileStore struct {
	dir string
}

func New(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(token string, user api.User) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("refusing to save empty token")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := os.WriteFile(s.tokenPath(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.WriteFile(s.userPath(), raw, 0o600); err != nil {
		// Never leave a token without its user record.
		_ = os.Remove(s.tokenPath())
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

// Load returns the stored pair. Any missing file or undecodable user payload
// clears both files and reports absence.
func (s *FileStore) Load() (string, api.User, bool) {
	tokenRaw, err := os.ReadFile(s.tokenPath())
	if err != nil {
		_ = s.Clear()
		return "", api.User{}, false
	}
	token := strings.TrimSpace(string(tokenRaw))
	if token == "" {
		_ = s.Clear()
		return "", api.User{}, false
	}

	userRaw, err := os.ReadFile(s.userPath())
	if err != nil {
		_ = s.Clear()
		return "", api.User{}, false
	}

	var user api.User
	if err := json.Unmarshal(userRaw, &user); err != nil {
		_ = s.Clear()
		return "", api.User{}, false
	}

	return token, user, true
}

func (s *FileStore) Clear() error {
	var errs []error
	for _, p := range []string{s.tokenPath(), s.userPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Token satisfies the gateway's Credentials interface without touching the
// user record.
func (s *FileStore) Token() (string, bool) {
	raw, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	return token, token != ""
}

func (s *FileStore) tokenPath() string { return filepath.Join(s.dir, tokenFile) }
func (s *FileStore) userPath() string  { return filepath.Join(s.dir, userFile) }
