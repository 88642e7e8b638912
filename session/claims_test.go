package session_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/session"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecodeClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	session.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { session.NowTimeFunc = time.Now })

	t.Run("Reads subject and times without verifying", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{
			"sub": "alice",
			"iss": "journal-backend",
			"iat": now.Add(-time.Hour).Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		claims, err := session.DecodeClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)
		require.Equal(t, "alice", claims.Username)
		require.Equal(t, "journal-backend", claims.Issuer)
		require.NotNil(t, claims.ExpiresAt)
		require.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
		require.False(t, claims.Expired())
	})

	t.Run("Prefers explicit username claims", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "42", "preferred_username": "bob"})
		claims, err := session.DecodeClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "bob", claims.Username)
		require.Nil(t, claims.ExpiresAt)
		require.False(t, claims.Expired())
	})

	t.Run("Expired is informational", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "alice", "exp": now.Add(-time.Minute).Unix()})
		claims, err := session.DecodeClaims(raw)
		require.NoError(t, err)
		require.True(t, claims.Expired())
	})

	t.Run("Opaque credentials cannot be decoded", func(t *testing.T) {
		_, err := session.DecodeClaims("opaque-credential")
		require.True(t, errors.Is(err, errors.ErrInvalidToken))

		_, err = session.DecodeClaims("")
		require.True(t, errors.Is(err, errors.ErrInvalidToken))
	})
}
