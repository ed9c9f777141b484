package main

import (
	"os"
	"strings"
)

// Environment variables read as flag defaults.
const (
	envConfigPath = "SVCINFO_CONFIG_PATH"
	envLogLevel   = "SVCINFO_LOG_LEVEL"
	envLogFormat  = "SVCINFO_LOG_FORMAT"
	envAddress    = "SVCINFO_ADDRESS"
)

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
