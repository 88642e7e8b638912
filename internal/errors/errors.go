package errors

import (
	"errors"
	"fmt"
)

// Common error types for the journal client
var (
	// Session errors
	ErrSessionInvalidated = errors.New("session invalidated")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrTokenNotIssued     = errors.New("invalid credentials or token not generated")
	ErrInvalidToken       = errors.New("invalid token")

	// OAuth handshake errors
	ErrCodeNotFound   = errors.New("authorization code not found")
	ErrInvalidState   = errors.New("invalid oauth state")
	ErrProviderDenied = errors.New("authorization denied by provider")
	ErrCancelled      = errors.New("authentication cancelled")

	// Backend errors
	ErrRequestFailed = errors.New("request failed")
	ErrTransport     = errors.New("backend unreachable")

	// Journal errors
	ErrInvalidEntryID = errors.New("entry id is undefined")
	ErrEmptyEntry     = errors.New("title and content are required")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
