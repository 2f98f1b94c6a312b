package dimmer

import (
	"fmt"
	"time"
)

// TuningParams holds the real-time adjustable dimming parameters.
// These can be modified via the tuning API without restarting.
type TuningParams struct {
	// Sampling grid
	StrideX int `json:"stride_x"` // Column step (1 = dense)
	StrideY int `json:"stride_y"` // Row step (1 = dense)

	// Timing
	SampleIntervalMs float64 `json:"sample_interval_ms"` // Cycle period

	// Geometry
	ShrinkFactor float64 `json:"shrink_factor"` // Bounding box shrink

	// Output mapping
	Gain float64 `json:"gain"` // Luminance to dimming scale
}

func tuningFromConfig(cfg Config) TuningParams {
	return TuningParams{
		StrideX:          cfg.StrideX,
		StrideY:          cfg.StrideY,
		SampleIntervalMs: float64(cfg.SampleInterval) / float64(time.Millisecond),
		ShrinkFactor:     cfg.ShrinkFactor,
		Gain:             cfg.Gain,
	}
}

// GetTuningParams returns current tuning parameters.
func (c *Controller) GetTuningParams() TuningParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tuningFromConfig(c.config)
}

// SetTuningParams updates tuning parameters at runtime.
// Only non-zero values are applied. The update is rejected as a whole if the
// resulting config is invalid.
func (c *Controller) SetTuningParams(params TuningParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.config
	if params.StrideX > 0 {
		cfg.StrideX = params.StrideX
	}
	if params.StrideY > 0 {
		cfg.StrideY = params.StrideY
	}
	if params.SampleIntervalMs > 0 {
		cfg.SampleInterval = time.Duration(params.SampleIntervalMs * float64(time.Millisecond))
	}
	if params.ShrinkFactor > 0 {
		cfg.ShrinkFactor = params.ShrinkFactor
	}
	if params.Gain > 0 {
		cfg.Gain = params.Gain
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	c.config = cfg
	c.projector.ShrinkFactor = cfg.ShrinkFactor
	c.logger.Info("dimmer tuning updated", "config", cfg.String())
	return nil
}
