package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/oauth"
)

func discoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                server.URL,
			"authorization_endpoint":                server.URL + "/authorize",
			"token_endpoint":                        server.URL + "/token",
			"jwks_uri":                              server.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolveEndpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("Google by default", func(t *testing.T) {
		ep, err := oauth.ResolveEndpoint(ctx, "")
		require.NoError(t, err)
		require.Equal(t, oauth.GoogleAuthURL, ep.AuthURL)
		require.NotEmpty(t, ep.TokenURL)
	})

	t.Run("Discovered from issuer", func(t *testing.T) {
		server := discoveryServer(t)
		ep, err := oauth.ResolveEndpoint(ctx, server.URL)
		require.NoError(t, err)
		require.Equal(t, server.URL+"/authorize", ep.AuthURL)
		require.Equal(t, server.URL+"/token", ep.TokenURL)
	})

	t.Run("Discovery failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()
		_, err := oauth.ResolveEndpoint(ctx, server.URL)
		require.Error(t, err)
	})
}

func TestNewConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires a client id", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "")
		_, err := oauth.NewConfig(ctx, config.New())
		require.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("Built from environment", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", testClientID)
		t.Setenv("OAUTH_REDIRECT_URL", "")
		t.Setenv("OAUTH_SCOPES", "")
		t.Setenv("OAUTH_ISSUER", "")

		c, err := oauth.NewConfig(ctx, config.New())
		require.NoError(t, err)
		require.Equal(t, testClientID, c.ClientID)
		require.Empty(t, c.ClientSecret)
		require.Equal(t, testRedirectURL, c.RedirectURL)
		require.Equal(t, []string{"email", "profile"}, c.Scopes)
		require.Equal(t, oauth.GoogleAuthURL, c.Endpoint.AuthURL)
	})
}
