// Package config exposes process-level configuration for the bank admin
// panel, resolved from environment variables with embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("BANKPANEL_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("BANKPANEL_DEBUG") == "true"
}

// IsProduction controls transport-only cookie attributes.
func IsProduction() bool {
	return os.Getenv("BANKPANEL_ENV") == "production"
}

func GetListen() string {
	return os.Getenv("BANKPANEL_LISTEN")
}

func GetPort() int {
	port := os.Getenv("BANKPANEL_PORT")
	if port == "" {
		return 5000
	}
	var p int
	if _, err := fmt.Sscanf(port, "%d", &p); err != nil || p <= 0 {
		return 5000
	}
	return p
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("BANKPANEL_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/bankpanel"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("BANKPANEL_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}
