package dimmer

import (
	"time"

	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Stats are cumulative controller counters plus the last measurement.
type Stats struct {
	Ticks   uint64            `json:"ticks"`   // Ticks received while sampling
	Cycles  uint64            `json:"cycles"`  // Cycles fired by the timer
	Applied uint64            `json:"applied"` // Cycles that wrote a value
	Skips   map[string]uint64 `json:"skips"`   // Skipped cycles by reason

	// PartialWrites counts applied cycles where some outputs failed
	PartialWrites uint64 `json:"partial_writes"`

	LastValue       float64               `json:"last_value"`
	HasValue        bool                  `json:"has_value"`
	LastLuminance   float64               `json:"last_luminance"`
	LastSampleCount int                   `json:"last_sample_count"`
	LastRect        projection.ScreenRect `json:"last_rect"`
	LastSampleAt    time.Time             `json:"last_sample_at"`

	Reallocations int `json:"reallocations"` // Staging buffer (re)allocations
}

func newStats() Stats {
	return Stats{Skips: make(map[string]uint64)}
}

// Status is the dashboard view of the controller.
type Status struct {
	State   string       `json:"state"`
	Enabled bool         `json:"enabled"`
	Target  string       `json:"target,omitempty"`
	Timer   float64      `json:"timer_ms"`
	Tuning  TuningParams `json:"tuning"`
	Stats   Stats        `json:"stats"`
}

// Status returns a snapshot for the dashboard.
func (c *Controller) Status() Status {
	stats := c.Stats()

	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:   c.stateLocked().String(),
		Enabled: c.enabled,
		Timer:   float64(c.timer) / float64(time.Millisecond),
		Tuning:  tuningFromConfig(c.config),
		Stats:   stats,
	}
	if c.target != nil {
		st.Target = c.target.Name
	}
	return st
}
