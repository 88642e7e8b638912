package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetBackendURL() string
	GetLogLevel() string
	GetLogFile() string
}

type OAuthConfig interface {
	GetGoogleClientID() string
	GetOAuthRedirectURL() string
	GetOAuthScopes() []string
	GetOAuthIssuer() string
	GetOAuthCallbackTimeout() time.Duration
}

type SessionConfig interface {
	GetSessionFile() string
	GetSessionKey() string
	GetWatchSession() bool
}

type mainConfig struct {
	EnvVars
	OAuth
	Session
}

func New() Config {
	return mainConfig{}
}
