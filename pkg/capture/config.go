// Package capture feeds camera frames and poses into the dimming pipeline.
// This follows the same pattern as pkg/dimmer for tunable parameters.
package capture

import "time"

// Config holds the capture request. The device picks the closest mode it
// supports and reports the negotiated size; intrinsics are rebuilt or
// rescaled for the frames that actually arrive.
type Config struct {
	// === Device ===
	DeviceID int `json:"device_id" yaml:"device_id"` // Index passed to the video backend

	// === Requested stream ===
	Width     int `json:"width" yaml:"width"`         // Frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS

	// FlipVertical reverses row order of every delivered frame.
	FlipVertical bool `json:"flip_vertical" yaml:"flip_vertical"`

	// PollInterval is how often an unavailable device is retried.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// HorizontalFOV in degrees, used when no calibrated intrinsics exist.
	HorizontalFOV float64 `json:"horizontal_fov" yaml:"horizontal_fov"`
}

// DefaultConfig requests 1280x720 at 30 fps, RGBA, polling once a second.
func DefaultConfig() Config {
	return Config{
		DeviceID:      0,
		Width:         1280,
		Height:        720,
		Framerate:     30,
		FlipVertical:  false,
		PollInterval:  time.Second,
		HorizontalFOV: 75,
	}
}

// HD1080Config requests 1080p.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	return cfg
}

// VGAConfig requests 640x480 for low powered hosts.
func VGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// Preset names for common configurations
const (
	PresetDefault = "default"
	Preset1080p   = "1080p"
	PresetVGA     = "vga"
)

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	presets := map[string]Config{
		PresetDefault: DefaultConfig(),
		Preset1080p:   HD1080Config(),
		PresetVGA:     VGAConfig(),
	}
	if cfg, ok := presets[name]; ok {
		return &cfg
	}
	return nil
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceID < 0 {
		errors = append(errors, "device_id must be >= 0")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.PollInterval < 10*time.Millisecond {
		errors = append(errors, "poll_interval must be at least 10ms")
	}
	if c.HorizontalFOV <= 0 || c.HorizontalFOV >= 180 {
		errors = append(errors, "horizontal_fov must be between 0 and 180 degrees")
	}

	return errors
}
