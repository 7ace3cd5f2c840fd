package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"examdesk/internal/client/api"
	"examdesk/internal/client/nav"
	"examdesk/internal/client/store"
)

// ErrLoginInFlight rejects a login attempt while a previous one is still
// pending.
var ErrLoginInFlight = errors.New("a login attempt is already in progress")

// Navigator receives route changes decided by the session manager.
type Navigator interface {
	Navigate(path string)
}

// Manager owns the current-user state. Everything else reads it through the
// accessors; the only writers are Restore, Login, Logout and the forced
// logout triggered by the gateway's session-invalidated signal.
type Manager struct {
	client   *api.Client
	store    *store.FileStore
	nav      Navigator
	notifier api.Notifier
	log      zerolog.Logger

	mu            sync.Mutex
	user          *api.User
	loading       bool
	restored      bool
	loginInFlight bool
}

func NewManager(client *api.Client, st *store.FileStore, navigator Navigator, notifier api.Notifier, log zerolog.Logger) *Manager {
	if notifier == nil {
		notifier = api.NopNotifier{}
	}
	return &Manager{
		client:   client,
		store:    st,
		nav:      navigator,
		notifier: notifier,
		log:      log,
		loading:  true,
	}
}

func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Role() api.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return api.RoleNone
	}
	return m.user.Role
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Restore loads the persisted session, if any. It runs once per process; a
// corrupt or absent pair leaves the manager anonymous. loading is false once
// it returns, whatever happened.
func (m *Manager) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.restored {
		m.loading = false
		return
	}
	m.restored = true

	defer func() { m.loading = false }()

	token, user, ok := m.store.Load()
	if !ok || token == "" {
		return
	}
	m.user = &user
	m.log.Debug().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session restored")
}

// Login authenticates and, on success, persists the pair, publishes the new
// state and navigates to the role's dashboard. Failures are absorbed: the
// user sees a notification and the state stays anonymous. A concurrent
// attempt is rejected with ErrLoginInFlight.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	if m.loginInFlight {
		m.mu.Unlock()
		return ErrLoginInFlight
	}
	m.loginInFlight = true
	m.loading = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loginInFlight = false
		m.loading = false
		m.mu.Unlock()
	}()

	result, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.log.Debug().Err(err).Msg("login failed")
		m.notifier.Notify(api.Notification{
			Title:    "Login failed",
			Message:  "Invalid email or password",
			Severity: api.SeverityError,
		})
		return nil
	}

	if err := m.store.Save(result.Token, result.User); err != nil {
		m.log.Error().Err(err).Msg("persist session failed")
		m.notifier.Notify(api.Notification{
			Title:    "Login failed",
			Message:  "Could not save your session",
			Severity: api.SeverityError,
		})
		return nil
	}

	m.mu.Lock()
	user := result.User
	m.user = &user
	m.mu.Unlock()

	m.nav.Navigate(nav.DashboardPath(result.User.Role))
	m.notifier.Notify(api.Notification{
		Title:    "Login successful",
		Message:  "Welcome back, " + result.User.Name + "!",
		Severity: api.SeveritySuccess,
	})
	return nil
}

// Logout clears everything locally and returns to the login page. It is a
// no-op-safe operation: calling it while anonymous still clears storage and
// navigates.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clear session storage failed")
	}

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	m.nav.Navigate(nav.LoginPath)
	m.notifier.Notify(api.Notification{
		Title:    "Logged out",
		Message:  "You have been successfully logged out.",
		Severity: api.SeverityInfo,
	})
}

// HandleSessionInvalidated is wired as the gateway's session-invalidated
// listener. Storage is already cleared by the gateway at that point; the
// in-memory user must not survive it either.
func (m *Manager) HandleSessionInvalidated() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	m.nav.Navigate(nav.LoginPath)
}
