package app

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jrsteele09/go-journal-client/apiclient"
	"github.com/jrsteele09/go-journal-client/internal/errors"
)

const (
	MsgLoginRequired      = "Please log in to access this page."
	MsgSessionExpired     = "Your session has expired. Please log in again."
	MsgLoggedOutElsewhere = "You have been logged out."
	MsgLoggedOut          = "Logged out."

	MsgLoginOK       = "Login successful!"
	MsgLoginFailed   = "Login failed."
	MsgNoToken       = "Invalid credentials or token not generated."
	MsgSignupOK      = "Signup successful!"
	MsgSignupFailed  = "Signup failed."
	MsgGoogleOK      = "Google login successful!"
	MsgGoogleFailed  = "Google login failed."
	MsgCodeNotFound  = "Authorization code not found."
	MsgGoogleOff     = "Google login is not configured."
	MsgGoogleWaiting = "Complete the sign-in in your browser."

	MsgUserFailed       = "Failed to fetch user details."
	MsgEntriesFailed    = "Failed to fetch entries."
	MsgEntryFailed      = "Failed to fetch entry."
	MsgSaveFailed       = "Failed to save entry."
	MsgUpdateFailed     = "Failed to update entry."
	MsgDeleteFailed     = "Failed to delete entries."
	MsgEntryIDUndefined = "Entry ID is undefined, cannot update."
	MsgEntryCreated     = "Entry created successfully."
	MsgEntryUpdated     = "Entry updated successfully."
	MsgEntryDeleted     = "Entry deleted successfully."
	MsgAllDeleted       = "All entries deleted successfully."
)

// describe turns err into the message shown to the user.
func describe(err error, fallback string) string {
	switch {
	case errors.Is(err, errors.ErrTokenNotIssued):
		return MsgNoToken
	case errors.Is(err, errors.ErrCodeNotFound):
		return MsgCodeNotFound
	case errors.Is(err, errors.ErrInvalidEntryID):
		return MsgEntryIDUndefined
	case errors.Is(err, errors.ErrNotLoggedIn):
		return MsgLoginRequired
	case errors.Is(err, errors.ErrEmptyEntry):
		return sentence(errors.ErrEmptyEntry.Error())
	case errors.Is(err, errors.ErrInvalidInput):
		return sentence(strings.TrimSuffix(err.Error(), ": "+errors.ErrInvalidInput.Error()))
	}
	return apiclient.MessageOr(err, fallback)
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
