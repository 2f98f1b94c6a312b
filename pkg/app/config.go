// Package app assembles the dimmer: camera, poses, targets, sinks,
// controller, dashboard and host monitor, and runs them together.
package app

import (
	"github.com/teslashibe/go-dimmer/internal/config"
)

// Config holds everything the application needs.
// Flag parsing is done in cmd/dimmer/main.go; this struct is data only.
type Config struct {
	// Scene is the loaded config file (or defaults).
	Scene config.File

	// Debug mirrors the on-screen debug text to stdout.
	Debug bool

	// NoCamera skips opening a capture device; the controller stays idle
	// until frames are published some other way.
	NoCamera bool

	// NoWeb disables the dashboard.
	NoWeb bool
}

// DefaultConfig returns the demo scene with camera and dashboard enabled.
func DefaultConfig() Config {
	return Config{Scene: config.Default()}
}

// Validate checks the scene.
func (c *Config) Validate() error {
	return c.Scene.Validate()
}
