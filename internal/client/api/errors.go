package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the server rejects the session; the
	// client's stored credentials have already been cleared by then.
	ErrUnauthorized = errors.New("session expired")

	ErrForbidden = errors.New("access denied")
)

// TransportError wraps a failure where no response was received at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError wraps a failure raised before the request was dispatched.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusError carries a non-2xx response outside the 401/403 special cases,
// with the message extracted from the body when one was present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Message)
}
