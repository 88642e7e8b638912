package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-journal-client/internal/errors"
)

// Error is a non-2xx backend response.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's "message" field, empty when the body carried none.
	Message string
	kind    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Unwrap yields ErrSessionInvalidated for 401 responses and ErrRequestFailed otherwise.
func (e *Error) Unwrap() error {
	return e.kind
}

func newError(method, path string, status int, body []byte) *Error {
	kind := errors.ErrRequestFailed
	if status == http.StatusUnauthorized {
		kind = errors.ErrSessionInvalidated
	}
	return &Error{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    backendMessage(body),
		kind:       kind,
	}
}

type errorBody struct {
	Message string `json:"message"`
}

func backendMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Message)
}

// MessageOr returns the backend-provided message carried by err, or fallback when there is none.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a backend response.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
