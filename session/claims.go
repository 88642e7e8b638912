package session

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/internal/utils"
)

// NowTimeFunc can be replaced in tests.
var NowTimeFunc = time.Now

// Claims is what the client can read out of a JWT credential without verifying it.
// It is for display only and never changes the session state.
type Claims struct {
	Subject   string
	Username  string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// DecodeClaims parses a JWT credential without checking its signature.
// Opaque credentials yield ErrInvalidToken.
func DecodeClaims(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.ErrInvalidToken
	}
	token, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "decoding credential: %v", err)
	}
	mc, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "error extracting claims")
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	username, _ := mc["username"].(string)
	preferred, _ := mc["preferred_username"].(string)
	c.Username = utils.FirstNonEmpty(username, preferred, c.Subject)

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = utils.Ptr(exp.Time)
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = utils.Ptr(iat.Time)
	}
	return c, nil
}

// Expired reports whether the exp claim lies in the past. A credential without exp never expires.
func (c *Claims) Expired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !NowTimeFunc().Before(utils.Value(c.ExpiresAt))
}
