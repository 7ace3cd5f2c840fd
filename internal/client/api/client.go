package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Credentials is the client-side token storage the gateway consults on every
// request. Clear is invoked when the server invalidates the session.
type Credentials interface {
	Token() (string, bool)
	Clear() error
}

// Client is the single path for all REST calls. It attaches the bearer token
// when one is stored and converts every failure into exactly one user-facing
// notification before returning the error to the caller.
type Client struct {
	baseURL   string
	http      *http.Client
	creds     Credentials
	notifier  Notifier
	onInvalid func()
	log       zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithSessionInvalidatedHandler registers the listener called after the
// server rejects the stored session. Navigation belongs to that listener, not
// to the gateway.
func WithSessionInvalidatedHandler(fn func()) Option {
	return func(c *Client) { c.onInvalid = fn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     http.DefaultClient,
		creds:    creds,
		notifier: NopNotifier{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do runs one request through the full policy: bearer attachment, then error
// classification in priority order. Every error path notifies exactly once
// and still returns the error.
func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		c.notifier.Notify(Notification{
			Title:    "Request Error",
			Message:  err.Error(),
			Severity: SeverityError,
		})
		return nil, &RequestError{Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	authenticated := false
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
		authenticated = true
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.notifier.Notify(Notification{
			Title:    "Network Error",
			Message:  "Unable to connect to the server. Please check your connection.",
			Severity: SeverityError,
		})
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	message := extractMessage(resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized && authenticated:
		// The session the request presented is dead. Clear storage first,
		// then let the registered listener own navigation.
		if err := c.creds.Clear(); err != nil {
			c.log.Warn().Err(err).Msg("clear credentials failed")
		}
		if c.onInvalid != nil {
			c.onInvalid()
		}
		c.notifier.Notify(Notification{
			Title:    "Session expired",
			Message:  "Please log in again to continue.",
			Severity: SeverityError,
		})
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)

	case resp.StatusCode == http.StatusForbidden:
		c.notifier.Notify(Notification{
			Title:    "Access denied",
			Message:  "You don't have permission to access this resource.",
			Severity: SeverityError,
		})
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrForbidden)

	default:
		if message == "" {
			message = "Something went wrong"
		}
		c.notifier.Notify(Notification{
			Title:    "Error",
			Message:  message,
			Severity: SeverityError,
		})
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: message}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			c.notifier.Notify(Notification{
				Title:    "Request Error",
				Message:  err.Error(),
				Severity: SeverityError,
			})
			return &RequestError{Err: err}
		}
		body = bytes.NewReader(raw)
	}

	resp, err := c.do(ctx, http.MethodPost, path, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// extractMessage pulls a human message out of an error body; both the
// {"error": ...} and {"message": ...} conventions are accepted.
func extractMessage(r io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := c.postJSON(ctx, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	return result, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := c.getJSON(ctx, "/me", &resp)
	return resp.User, err
}

func (c *Client) MyGrades(ctx context.Context) ([]Grade, error) {
	var grades []Grade
	err := c.getJSON(ctx, "/my-grades", &grades)
	return grades, err
}

func (c *Client) MyResitExams(ctx context.Context) ([]ResitExam, error) {
	var exams []ResitExam
	err := c.getJSON(ctx, "/my-resit-exams", &exams)
	return exams, err
}

// EligibleResits lists failing courses still open for a resit declaration.
func (c *Client) EligibleResits(ctx context.Context) ([]Grade, error) {
	var grades []Grade
	err := c.getJSON(ctx, "/eligible-resits", &grades)
	return grades, err
}

func (c *Client) DeclareResit(ctx context.Context, courseID string) error {
	return c.postJSON(ctx, "/declare-resit", map[string]string{"courseId": courseID}, nil)
}

// DownloadSchedule streams the named schedule file; the caller owns the
// returned reader.
func (c *Client) DownloadSchedule(ctx context.Context, filename string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, "/schedule/"+url.PathEscape(filename), "", nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) ResitStats(ctx context.Context) (ResitStats, error) {
	var stats ResitStats
	err := c.getJSON(ctx, "/resit-stats", &stats)
	return stats, err
}

func (c *Client) SubmitGrade(ctx context.Context, input SubmitGradeInput) (Grade, error) {
	var grade Grade
	err := c.postJSON(ctx, "/submit-grade", input, &grade)
	return grade, err
}

func (c *Client) UpsertResitDetails(ctx context.Context, details ResitDetails) (ResitExam, error) {
	var exam ResitExam
	err := c.postJSON(ctx, "/resit-details", details, &exam)
	return exam, err
}

func (c *Client) ResitRegistrations(ctx context.Context, courseID string) ([]Registration, error) {
	var regs []Registration
	err := c.getJSON(ctx, "/resit-registrations/"+url.PathEscape(courseID), &regs)
	return regs, err
}

func (c *Client) UploadSchedule(ctx context.Context, filename string, content io.Reader) (ScheduleFile, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err == nil {
		_, err = io.Copy(part, content)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		c.notifier.Notify(Notification{
			Title:    "Request Error",
			Message:  err.Error(),
			Severity: SeverityError,
		})
		return ScheduleFile{}, &RequestError{Err: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/upload-schedule", writer.FormDataContentType(), &buf)
	if err != nil {
		return ScheduleFile{}, err
	}
	defer resp.Body.Close()

	var file ScheduleFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return ScheduleFile{}, err
	}
	return file, nil
}

func (c *Client) Schedules(ctx context.Context) ([]ScheduleFile, error) {
	var files []ScheduleFile
	err := c.getJSON(ctx, "/schedules", &files)
	return files, err
}
