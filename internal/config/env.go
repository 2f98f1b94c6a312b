// Package config provides configuration helpers for the dimmer commands:
// environment overrides and the YAML scene file.
package config

import "os"

// Environment variables
const (
	EnvConfig   = "DIMMER_CONFIG"
	EnvPort     = "DIMMER_PORT"
	EnvLogLevel = "DIMMER_LOG_LEVEL"
	EnvSinkURL  = "DIMMER_SINK_URL"
)

// DefaultPort for the dashboard.
const DefaultPort = "8080"

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Path returns the config file path or URL. An explicit value (the -config
// flag) wins; DIMMER_CONFIG is used only when it is empty.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvConfig)
}

// Port returns the dashboard port from DIMMER_PORT or the default.
func Port(def string) string {
	return env(EnvPort, def)
}

// LogLevel returns the log level from DIMMER_LOG_LEVEL or the default.
func LogLevel(def string) string {
	return env(EnvLogLevel, def)
}

// SinkURL returns the rendering host websocket URL from DIMMER_SINK_URL.
func SinkURL(def string) string {
	return env(EnvSinkURL, def)
}
