package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type memCreds struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memCreds) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *memCreds) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) titled(title string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notes {
		if n.Title == title {
			out = append(out, n)
		}
	}
	return out
}

func TestBearerAttachedWhenTokenStored(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	creds := &memCreds{token: "tok-1"}
	client := NewClient(srv.URL, creds)

	if _, err := client.MyGrades(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoBearerWhenTokenAbsent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &memCreds{})
	if _, err := client.MyGrades(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestUnauthorizedClearsAndSignalsOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	creds := &memCreds{token: "stale"}
	notifier := &recordingNotifier{}
	invalidated := 0
	client := NewClient(srv.URL, creds,
		WithNotifier(notifier),
		WithSessionInvalidatedHandler(func() { invalidated++ }),
	)

	_, err := client.MyGrades(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if creds.cleared != 1 {
		t.Fatalf("expected credentials cleared once, got %d", creds.cleared)
	}
	if invalidated != 1 {
		t.Fatalf("expected one invalidation signal, got %d", invalidated)
	}
	if got := notifier.titled("Session expired"); len(got) != 1 {
		t.Fatalf("expected exactly one session-expired notification, got %d", len(got))
	}
}

func TestUnauthorizedWithoutTokenIsPlainRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	creds := &memCreds{}
	notifier := &recordingNotifier{}
	invalidated := 0
	client := NewClient(srv.URL, creds,
		WithNotifier(notifier),
		WithSessionInvalidatedHandler(func() { invalidated++ }),
	)

	_, err := client.Login(context.Background(), "x@y.z", "nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if statusErr.Message != "invalid credentials" {
		t.Fatalf("expected body message, got %q", statusErr.Message)
	}
	if invalidated != 0 {
		t.Fatalf("a 401 on an unauthenticated call must not invalidate, got %d signals", invalidated)
	}
	if creds.cleared != 0 {
		t.Fatalf("credentials must not be cleared, got %d", creds.cleared)
	}
}

func TestForbiddenNotifiesOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	creds := &memCreds{token: "tok"}
	notifier := &recordingNotifier{}
	client := NewClient(srv.URL, creds, WithNotifier(notifier))

	_, err := client.ResitStats(context.Background())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if creds.cleared != 0 {
		t.Fatalf("403 must not clear credentials")
	}
	if got := notifier.titled("Access denied"); len(got) != 1 {
		t.Fatalf("expected exactly one access-denied notification, got %d", len(got))
	}
}

func TestServerErrorSurfacesBodyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database on fire"}`))
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	client := NewClient(srv.URL, &memCreds{token: "tok"}, WithNotifier(notifier))

	_, err := client.MyGrades(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Message != "database on fire" {
		t.Fatalf("expected body message, got %q", statusErr.Message)
	}
	got := notifier.titled("Error")
	if len(got) != 1 || got[0].Message != "database on fire" {
		t.Fatalf("expected one error notification with body message, got %+v", got)
	}
}

func TestServerErrorWithoutBodyUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	client := NewClient(srv.URL, &memCreds{}, WithNotifier(notifier))

	_, err := client.Schedules(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Message != "Something went wrong" {
		t.Fatalf("expected fallback message, got %q", statusErr.Message)
	}
}

func TestTransportFailureNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	notifier := &recordingNotifier{}
	client := NewClient(srv.URL, &memCreds{}, WithNotifier(notifier))

	_, err := client.MyGrades(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if got := notifier.titled("Network Error"); len(got) != 1 {
		t.Fatalf("expected exactly one network-error notification, got %d", len(got))
	}
}

func TestSuccessPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"g1","courseId":"c1","grade":72}]`))
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	client := NewClient(srv.URL, &memCreds{token: "tok"}, WithNotifier(notifier))

	grades, err := client.MyGrades(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grades) != 1 || grades[0].ID != "g1" || grades[0].Grade != 72 {
		t.Fatalf("unexpected grades: %+v", grades)
	}
	if len(notifier.notes) != 0 {
		t.Fatalf("success must not notify, got %+v", notifier.notes)
	}
}
