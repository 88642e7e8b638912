package oauth

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/internal/errors"
)

// GoogleAuthURL is Google's v2 authorization endpoint.
const GoogleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

// GoogleEndpoint is google.Endpoint with the v2 authorization URL.
func GoogleEndpoint() oauth2.Endpoint {
	ep := google.Endpoint
	ep.AuthURL = GoogleAuthURL
	return ep
}

// ResolveEndpoint returns the Google endpoint, or the one advertised by issuer's
// OpenID discovery document when issuer is set.
func ResolveEndpoint(ctx context.Context, issuer string) (oauth2.Endpoint, error) {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return GoogleEndpoint(), nil
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return oauth2.Endpoint{}, errors.Wrapf(err, "discovering oauth endpoints for %s", issuer)
	}
	return provider.Endpoint(), nil
}

// NewConfig builds the client-side OAuth configuration. There is no client secret: the
// code is redeemed by the backend, never by this client.
func NewConfig(ctx context.Context, c config.OAuthConfig) (*oauth2.Config, error) {
	clientID := strings.TrimSpace(c.GetGoogleClientID())
	if clientID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "GOOGLE_CLIENT_ID is not set")
	}
	endpoint, err := ResolveEndpoint(ctx, c.GetOAuthIssuer())
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: c.GetOAuthRedirectURL(),
		Scopes:      c.GetOAuthScopes(),
		Endpoint:    endpoint,
	}, nil
}
