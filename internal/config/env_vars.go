package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	appNameVar    = "APP_NAME"
	folderEnvVar  = "FOLDER"
	backendURLVar = "BACKEND_URL"
	logLevelVar   = "LOG_LEVEL"
	logFileVar    = "LOG_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Journal")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBackendURL returns the base address every API call is resolved against.
func (EnvVars) GetBackendURL() string {
	return GetEnv(backendURLVar, "http://localhost:8081")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetLogFile returns the log destination. "-" means stderr.
func (e EnvVars) GetLogFile() string {
	return GetEnv(logFileVar, filepath.Join(e.GetDataFolder(), "journal.log"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
