package config

import (
	"strings"
	"time"
)

const (
	googleClientIDVar   = "GOOGLE_CLIENT_ID"
	oauthRedirectURLVar = "OAUTH_REDIRECT_URL"
	oauthScopesVar      = "OAUTH_SCOPES"
	oauthIssuerVar      = "OAUTH_ISSUER"
)

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetGoogleClientID() string {
	return GetEnv(googleClientIDVar, "")
}

// GetOAuthRedirectURL is the fixed callback address registered with the provider.
func (OAuth) GetOAuthRedirectURL() string {
	return GetEnv(oauthRedirectURLVar, "http://localhost:5173/login/auth/google/callback")
}

func (OAuth) GetOAuthScopes() []string {
	return strings.Fields(GetEnv(oauthScopesVar, "email profile"))
}

// GetOAuthIssuer, when set, switches endpoint resolution to OpenID discovery.
func (OAuth) GetOAuthIssuer() string {
	return GetEnv(oauthIssuerVar, "")
}

func (OAuth) GetOAuthCallbackTimeout() time.Duration {
	return 5 * time.Minute
}
