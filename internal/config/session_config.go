package config

import "path/filepath"

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionFile() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), "session.json")
}

// GetSessionKey is the single entry name the credential lives under.
func (Session) GetSessionKey() string {
	return "token"
}

func (Session) GetWatchSession() bool {
	return GetEnvBool("SESSION_WATCH", true)
}
