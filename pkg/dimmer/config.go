package dimmer

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Config holds all tunable parameters for the dimming controller
type Config struct {
	// Sampling grid
	StrideX int `yaml:"stride_x" json:"stride_x"` // Sample every StrideX-th column
	StrideY int `yaml:"stride_y" json:"stride_y"` // Sample every StrideY-th row

	// Timing
	SampleInterval time.Duration `yaml:"sample_interval" json:"sample_interval"` // Minimum accumulated time between cycles
	FrameInterval  time.Duration `yaml:"frame_interval" json:"frame_interval"`   // Tick period when driven by Run

	// Geometry
	ShrinkFactor float64 `yaml:"shrink_factor" json:"shrink_factor"` // Bounding box shrink around its center

	// Output mapping
	Gain float64 `yaml:"gain" json:"gain"` // Dimming value = clamp(Gain * luminance, 0, 1)
}

// DefaultConfig returns the near-real-time configuration: a coarse grid
// sampled ten times a second.
func DefaultConfig() Config {
	return Config{
		StrideX: 10,
		StrideY: 10,

		SampleInterval: 100 * time.Millisecond,
		FrameInterval:  time.Second / 60, // one tick per rendered frame

		ShrinkFactor: projection.DefaultShrinkFactor,

		Gain: 1.0, // luminance drives dimming directly
	}
}

// DenseConfig visits every pixel. Use it to validate the coarse estimate.
func DenseConfig() Config {
	cfg := DefaultConfig()
	cfg.StrideX = 1
	cfg.StrideY = 1
	return cfg
}

// FastConfig samples more often on a slightly finer grid.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.StrideX = 8
	cfg.StrideY = 8
	cfg.SampleInterval = 50 * time.Millisecond
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.StrideX < 1 || c.StrideX > 256 {
		errors = append(errors, "stride_x must be between 1 and 256")
	}
	if c.StrideY < 1 || c.StrideY > 256 {
		errors = append(errors, "stride_y must be between 1 and 256")
	}
	if c.SampleInterval < time.Millisecond || c.SampleInterval > 10*time.Second {
		errors = append(errors, "sample_interval must be between 1ms and 10s")
	}
	if c.FrameInterval <= 0 {
		errors = append(errors, "frame_interval must be positive")
	}
	if c.ShrinkFactor <= 0 || c.ShrinkFactor > 1 {
		errors = append(errors, "shrink_factor must be in (0, 1]")
	}
	if c.Gain <= 0 || c.Gain > 10 {
		errors = append(errors, "gain must be in (0, 10]")
	}

	return errors
}

// String summarizes the config for startup logs.
func (c Config) String() string {
	return fmt.Sprintf("stride=%dx%d interval=%v shrink=%.3f gain=%.2f",
		c.StrideX, c.StrideY, c.SampleInterval, c.ShrinkFactor, c.Gain)
}
