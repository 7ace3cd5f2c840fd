package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"examdesk/internal/client/api"
	"examdesk/internal/client/store"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingNavigator) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingNavigator) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}

func (r *recordingNavigator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []api.Notification
}

func (r *recordingNotifier) Notify(n api.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) titled(title string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notes {
		if n.Title == title {
			count++
		}
	}
	return count
}

type fixture struct {
	manager  *Manager
	client   *api.Client
	store    *store.FileStore
	nav      *recordingNavigator
	notifier *recordingNotifier
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	fx := &fixture{
		store:    st,
		nav:      &recordingNavigator{},
		notifier: &recordingNotifier{},
	}
	fx.client = api.NewClient(srv.URL, st,
		api.WithNotifier(fx.notifier),
		api.WithSessionInvalidatedHandler(func() { fx.manager.HandleSessionInvalidated() }),
	)
	fx.manager = NewManager(fx.client, st, fx.nav, fx.notifier, zerolog.Nop())
	return fx
}

func loginHandler(role api.Role) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-abc","user":{"id":"u1","name":"Ada","email":"ada@example.edu","role":"` + string(role) + `"}}`))
	})
	return mux
}

func TestRestoreRecoversPersistedSession(t *testing.T) {
	fx := newFixture(t, http.NewServeMux())
	if err := fx.store.Save("tok-abc", api.User{ID: "u1", Name: "Ada", Role: api.RoleStudent}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if !fx.manager.IsLoading() {
		t.Fatalf("manager must start in loading state")
	}
	fx.manager.Restore()

	if fx.manager.IsLoading() {
		t.Fatalf("loading must end after restore")
	}
	user := fx.manager.User()
	if user == nil || user.ID != "u1" || user.Role != api.RoleStudent {
		t.Fatalf("unexpected restored user: %+v", user)
	}
	if fx.nav.count() != 0 {
		t.Fatalf("restore must not navigate, got %v", fx.nav.paths)
	}
}

func TestRestoreWithEmptyStorageStaysAnonymous(t *testing.T) {
	fx := newFixture(t, http.NewServeMux())
	fx.manager.Restore()

	if fx.manager.IsAuthenticated() {
		t.Fatalf("expected anonymous manager")
	}
	if fx.manager.IsLoading() {
		t.Fatalf("loading must end after restore")
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	cases := []struct {
		role api.Role
		want string
	}{
		{api.RoleStudent, "/student/dashboard"},
		{api.RoleInstructor, "/instructor/dashboard"},
		{api.RoleSecretary, "/secretary/dashboard"},
		{api.Role("registrar"), "/"},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			fx := newFixture(t, loginHandler(tc.role))
			fx.manager.Restore()

			if err := fx.manager.Login(context.Background(), "ada@example.edu", "pw"); err != nil {
				t.Fatalf("login: %v", err)
			}
			if got := fx.nav.last(); got != tc.want {
				t.Fatalf("expected redirect to %s, got %s", tc.want, got)
			}
			if !fx.manager.IsAuthenticated() {
				t.Fatalf("expected authenticated state")
			}
			if token, ok := fx.store.Token(); !ok || token != "tok-abc" {
				t.Fatalf("expected token persisted, got %q ok=%v", token, ok)
			}
			if fx.notifier.titled("Login successful") != 1 {
				t.Fatalf("expected one success notification")
			}
		})
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	})
	fx := newFixture(t, mux)
	fx.manager.Restore()

	if err := fx.manager.Login(context.Background(), "ada@example.edu", "wrong"); err != nil {
		t.Fatalf("login failure must be absorbed, got %v", err)
	}
	if fx.manager.IsAuthenticated() {
		t.Fatalf("failed login must leave manager anonymous")
	}
	if fx.manager.IsLoading() {
		t.Fatalf("loading must end after failed login")
	}
	if fx.nav.count() != 0 {
		t.Fatalf("failed login must not navigate, got %v", fx.nav.paths)
	}
	if _, ok := fx.store.Token(); ok {
		t.Fatalf("failed login must not persist a token")
	}
	if fx.notifier.titled("Login failed") != 1 {
		t.Fatalf("expected one login-failed notification")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	fx := newFixture(t, loginHandler(api.RoleStudent))
	fx.manager.Restore()
	if err := fx.manager.Login(context.Background(), "ada@example.edu", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	fx.manager.Logout()

	if fx.manager.IsAuthenticated() {
		t.Fatalf("expected anonymous manager after logout")
	}
	if _, ok := fx.store.Token(); ok {
		t.Fatalf("logout must clear stored token")
	}
	if got := fx.nav.last(); got != "/login" {
		t.Fatalf("expected navigation to /login, got %s", got)
	}
}

func TestLogoutWhileAnonymousStillNavigates(t *testing.T) {
	fx := newFixture(t, http.NewServeMux())
	fx.manager.Restore()

	fx.manager.Logout()

	if got := fx.nav.last(); got != "/login" {
		t.Fatalf("expected navigation to /login, got %s", got)
	}
	if fx.notifier.titled("Logged out") != 1 {
		t.Fatalf("expected one logged-out notification")
	}
}

func TestServerRejectionForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /my-grades", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	})
	fx := newFixture(t, mux)
	if err := fx.store.Save("tok-stale", api.User{ID: "u1", Name: "Ada", Role: api.RoleStudent}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	fx.manager.Restore()
	if !fx.manager.IsAuthenticated() {
		t.Fatalf("expected restored session")
	}

	_, err := fx.client.MyGrades(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fx.manager.IsAuthenticated() {
		t.Fatalf("rejected session must leave manager anonymous")
	}
	if _, ok := fx.store.Token(); ok {
		t.Fatalf("rejected session must clear stored token")
	}
	if got := fx.nav.last(); got != "/login" {
		t.Fatalf("expected navigation to /login, got %s", got)
	}
	if fx.notifier.titled("Session expired") != 1 {
		t.Fatalf("expected exactly one session-expired notification")
	}
}

func TestConcurrentLoginRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-abc","user":{"id":"u1","name":"Ada","email":"ada@example.edu","role":"student"}}`))
	})
	fx := newFixture(t, mux)
	fx.manager.Restore()

	done := make(chan error, 1)
	go func() {
		done <- fx.manager.Login(context.Background(), "ada@example.edu", "pw")
	}()

	<-entered
	if err := fx.manager.Login(context.Background(), "ada@example.edu", "pw"); !errors.Is(err, ErrLoginInFlight) {
		t.Fatalf("expected ErrLoginInFlight, got %v", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("first login: %v", err)
	}
	if !fx.manager.IsAuthenticated() {
		t.Fatalf("first login must still succeed")
	}
}
