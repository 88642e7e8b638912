package auth

import (
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-journal-client/internal/errors"
)

// Validate checks the fields a login form marks as required.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "username is required")
	}
	if c.Password == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "password is required")
	}
	return nil
}

// Validate checks required fields and the email shape. Everything else is the backend's call.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "email %q is not valid", r.Email)
	}
	return Credentials{Username: r.Username, Password: r.Password}.Validate()
}
