package capture

import (
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-dimmer/pkg/frame"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Source is the frame producer side of the pipeline. A driver pushes raw
// planes in; the controller reads the latest normalized frame out.
type Source struct {
	slot   *frame.Slot
	opts   frame.NormalizeOptions
	active atomic.Bool
	errors atomic.Uint64
}

// NewSource creates an inactive source.
func NewSource(flipVertical bool) *Source {
	return &Source{
		slot: frame.NewSlot(),
		opts: frame.NormalizeOptions{FlipVertical: flipVertical},
	}
}

// PublishPlane normalizes p (strips row padding, optional flip) and makes it
// the latest frame. pose may be nil.
func (s *Source) PublishPlane(p frame.Plane, ts time.Time, pose *projection.CameraPose) error {
	img, err := frame.Normalize(p, s.opts, nil)
	if err != nil {
		s.errors.Add(1)
		return fmt.Errorf("capture: %w", err)
	}
	s.PublishImage(img, ts, pose)
	return nil
}

// PublishImage publishes an already dense image. The caller gives up img.
func (s *Source) PublishImage(img *image.RGBA, ts time.Time, pose *projection.CameraPose) {
	s.slot.Publish(&frame.Frame{Image: img, Timestamp: ts, Pose: pose})
}

// Latest returns the most recent frame or nil.
func (s *Source) Latest() *frame.Frame {
	return s.slot.Latest()
}

// Active reports whether capture is running.
func (s *Source) Active() bool {
	return s.active.Load()
}

// SetActive marks capture as running or stopped. Stopping drops the last frame.
func (s *Source) SetActive(active bool) {
	s.active.Store(active)
	if !active {
		s.slot.Clear()
	}
}

// SourceStats are producer counters.
type SourceStats struct {
	Active    bool   `json:"active"`
	Published uint64 `json:"published"`
	Replaced  uint64 `json:"replaced"`
	Errors    uint64 `json:"errors"`
}

// Stats returns producer counters.
func (s *Source) Stats() SourceStats {
	st := s.slot.Stats()
	return SourceStats{
		Active:    s.Active(),
		Published: st.Published,
		Replaced:  st.Replaced,
		Errors:    s.errors.Load(),
	}
}
