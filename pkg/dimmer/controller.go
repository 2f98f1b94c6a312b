// Package dimmer drives a segmented dimming overlay from the luminance of
// the real scene behind a virtual target.
//
// A Controller is ticked once per rendered frame. It accumulates elapsed time
// and, whenever the accumulator exceeds the sample interval, runs one cycle:
// facing gate, stage the latest camera frame, project the target's bounding
// box into the camera, sample luminance on a strided grid and write the result
// to the target's dimming output. Any missing input skips the cycle.
package dimmer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"github.com/teslashibe/go-dimmer/internal/timeutil"
	"github.com/teslashibe/go-dimmer/pkg/frame"
	"github.com/teslashibe/go-dimmer/pkg/luminance"
	"github.com/teslashibe/go-dimmer/pkg/projection"
	"github.com/teslashibe/go-dimmer/pkg/target"
)

// FrameSource provides the most recent camera frame
type FrameSource interface {
	Latest() *frame.Frame // nil when no frame has arrived
	Active() bool         // capture is running
}

// PoseProvider supplies viewer and camera poses from the mixed reality runtime
type PoseProvider interface {
	ViewerPose() (projection.Pose, bool)
	FramePose(ts time.Time) (mgl64.Mat4, bool)
	Intrinsics(ts time.Time) (projection.Intrinsics, bool)
}

// StateUpdater receives human readable status for on-screen text
type StateUpdater interface {
	SetDimmerLabel(label string)
	SetDebugText(text string)
}

// Sample describes one applied cycle.
type Sample struct {
	Target string
	Frame  *image.RGBA // staged copy, valid only during the callback
	Rect   r2.Rect
	Result luminance.Result
	Value  float64
	At     time.Time
}

// SampleObserver is called synchronously after each applied cycle.
type SampleObserver func(s Sample)

// State is the controller state machine position.
type State int

const (
	Idle State = iota
	Sampling
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "sampling"
	default:
		return "idle"
	}
}

// Controller is the throttled luminance-to-dimming loop
type Controller struct {
	config  Config
	frames  FrameSource
	poses   PoseProvider
	updater StateUpdater
	observe SampleObserver
	clock   timeutil.Clock
	logger  *slog.Logger

	projector *projection.Projector
	stager    *frame.Stager

	mu      sync.Mutex
	enabled bool
	target  *target.Target
	timer   time.Duration
	stats   Stats
}

// Option configures a Controller.
type Option func(*Controller)

// WithStateUpdater sets the on-screen text sink.
func WithStateUpdater(u StateUpdater) Option {
	return func(c *Controller) { c.updater = u }
}

// WithObserver sets a callback for applied cycles.
func WithObserver(fn SampleObserver) Option {
	return func(c *Controller) { c.observe = fn }
}

// WithClock overrides the wall clock used by Run and sample timestamps.
func WithClock(clock timeutil.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPool makes the staging buffer draw from a shared pool.
func WithPool(p *frame.Pool) Option {
	return func(c *Controller) { c.stager = frame.NewStager(p) }
}

// New creates a controller in the Idle state.
func New(config Config, frames FrameSource, poses PoseProvider, opts ...Option) *Controller {
	c := &Controller{
		config:    config,
		frames:    frames,
		poses:     poses,
		clock:     timeutil.RealClock{},
		logger:    slog.Default(),
		projector: projection.NewProjector(config.ShrinkFactor),
		stager:    frame.NewStager(nil),
		stats:     newStats(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enable starts sampling once a target is selected and capture is active.
func (c *Controller) Enable() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
}

// Disable stops sampling and clears the active target. Safe to call at any
// time; an in-flight cycle completes before Disable takes effect.
func (c *Controller) Disable() {
	c.mu.Lock()
	c.enabled = false
	c.target = nil
	c.timer = 0
	c.mu.Unlock()

	if c.updater != nil {
		c.updater.SetDimmerLabel(target.PausedLabel)
	}
	c.logger.Info("dimmer paused")
}

// SelectTarget switches the active target. The next fired cycle uses the new
// target; nothing is blended from the previous one. A nil target clears it.
func (c *Controller) SelectTarget(t *target.Target) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()

	if t == nil {
		return
	}
	if c.updater != nil {
		c.updater.SetDimmerLabel(t.Label)
	}
	c.logger.Info("dimmer target selected", "target", t.Name)
}

// Activate selects t and enables sampling in one step.
func (c *Controller) Activate(t *target.Target) {
	c.SelectTarget(t)
	c.Enable()
}

// Target returns the active target, or nil.
func (c *Controller) Target() *target.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// State reports Idle or Sampling.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	if c.enabled && c.target != nil && c.frames != nil && c.frames.Active() {
		return Sampling
	}
	return Idle
}

// Timer returns the accumulated time since the last cycle.
func (c *Controller) Timer() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer
}

// Tick advances the accumulator by dt. When the accumulator exceeds the
// sample interval exactly one cycle runs and the interval is subtracted,
// keeping the residual. Returns whether a cycle fired.
func (c *Controller) Tick(dt time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateLocked() != Sampling {
		return false
	}
	c.stats.Ticks++

	c.timer += dt
	if c.timer <= c.config.SampleInterval {
		return false
	}
	c.timer -= c.config.SampleInterval

	c.stats.Cycles++
	value, err := c.cycleLocked()
	if err != nil {
		reason := SkipReason(err)
		c.stats.Skips[reason]++
		c.logger.Debug("dimmer cycle skipped", "reason", reason, "error", err)
		return true
	}

	c.stats.Applied++
	c.stats.LastValue = value
	c.stats.HasValue = true
	return true
}

// cycleLocked runs one sampling cycle. c.mu must be held.
func (c *Controller) cycleLocked() (float64, error) {
	tgt := c.target
	if tgt == nil {
		return 0, ErrNoTarget
	}
	tr := tgt.Transform()

	// facing gate before touching any pixels
	viewer, ok := c.poses.ViewerPose()
	if !ok {
		return 0, ErrNoViewerPose
	}
	if !projection.IsFacingCamera(viewer, tr.Position) {
		return 0, ErrNotFacing
	}

	f := c.frames.Latest()
	if f == nil || f.Image == nil {
		return 0, ErrNoFrame
	}
	staged := c.stager.Stage(f.Image)

	pose, err := c.cameraPose(f)
	if err != nil {
		return 0, err
	}

	m, err := Measure(c.projector, staged, tr, tgt.Bounds, pose, c.config.StrideX, c.config.StrideY)
	c.stats.LastRect = projection.ToScreenRect(m.Rect)
	if err != nil {
		return 0, err
	}
	c.stats.LastLuminance = m.Sample.Mean
	c.stats.LastSampleCount = m.Sample.Count

	value := clamp(c.config.Gain*m.Sample.Mean, 0, 1)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNonFinite
	}

	out := tgt.Output()
	if out == nil {
		return 0, ErrNoOutput
	}
	if err := out.SetDimming(value); err != nil {
		c.logger.Warn("dimming output failed", "target", tgt.Name, "error", err)
		if !errors.Is(err, target.ErrPartialWrite) {
			return 0, fmt.Errorf("%w: %v", ErrSink, err)
		}
		c.stats.PartialWrites++
	}

	now := c.clock.Now()
	c.stats.LastSampleAt = now
	c.logger.Debug("dimmer cycle applied",
		"target", tgt.Name,
		"texture", staged.Bounds().Size(),
		"samples", m.Sample.Count,
		"dimming", value)

	if c.updater != nil {
		c.updater.SetDebugText(fmt.Sprintf("  Average luminance in bounding box: %v\n", m.Sample.Mean))
	}
	if c.observe != nil {
		c.observe(Sample{
			Target: tgt.Name,
			Frame:  staged,
			Rect:   m.Rect,
			Result: m.Sample,
			Value:  value,
			At:     now,
		})
	}

	return value, nil
}

// cameraPose prefers the pose delivered with the frame and falls back to the
// provider lookup by capture timestamp.
func (c *Controller) cameraPose(f *frame.Frame) (projection.CameraPose, error) {
	if f.Pose != nil {
		if f.Pose.Intrinsics == nil {
			return projection.CameraPose{}, ErrNoIntrinsics
		}
		return *f.Pose, nil
	}

	m, ok := c.poses.FramePose(f.Timestamp)
	if !ok {
		return projection.CameraPose{}, ErrNoCameraPose
	}
	in, ok := c.poses.Intrinsics(f.Timestamp)
	if !ok {
		return projection.CameraPose{}, ErrNoIntrinsics
	}
	return projection.CameraPose{CameraToWorld: m, Intrinsics: &in, Timestamp: f.Timestamp}, nil
}

// Run ticks the controller from a wall clock ticker until ctx is cancelled.
// Hosts that already have a per-frame callback call Tick directly instead.
func (c *Controller) Run(ctx context.Context) {
	c.mu.Lock()
	interval := c.config.FrameInterval
	c.mu.Unlock()
	if interval <= 0 {
		interval = DefaultConfig().FrameInterval
	}

	last := c.clock.Now()
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("dimmer controller started", "config", c.Config().String())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("dimmer controller stopped")
			return
		case now := <-ticker.C():
			dt := now.Sub(last)
			last = now
			if dt < 0 {
				dt = 0
			}
			c.Tick(dt)
		}
	}
}

// Config returns the current configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Stats returns a copy of the running counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Skips = make(map[string]uint64, len(c.stats.Skips))
	for k, v := range c.stats.Skips {
		s.Skips[k] = v
	}
	s.Reallocations = c.stager.Reallocations()
	return s
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
