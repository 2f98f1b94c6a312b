package frame

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Frame is one captured camera image plus the pose it was taken at.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
	Seq       uint64

	// Pose is set when the source delivers pose alongside pixels.
	// When nil the controller asks its pose provider for the timestamp.
	Pose *projection.CameraPose
}

// Slot holds the most recent frame. One goroutine publishes, another reads;
// a newer frame simply replaces the older one.
type Slot struct {
	latest    atomic.Pointer[Frame]
	published atomic.Uint64
	replaced  atomic.Uint64
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish makes f the latest frame and assigns it a sequence number.
// The caller must not modify f.Image afterwards.
func (s *Slot) Publish(f *Frame) {
	if f == nil {
		return
	}
	f.Seq = s.published.Add(1)
	if old := s.latest.Swap(f); old != nil {
		s.replaced.Add(1)
	}
}

// Latest returns the current frame, or nil when nothing was published yet.
func (s *Slot) Latest() *Frame {
	return s.latest.Load()
}

// Clear drops the current frame.
func (s *Slot) Clear() {
	s.latest.Store(nil)
}

// SlotStats are cumulative publish counters.
type SlotStats struct {
	Published uint64 `json:"published"`
	Replaced  uint64 `json:"replaced"`
}

// Stats returns the publish counters.
func (s *Slot) Stats() SlotStats {
	return SlotStats{
		Published: s.published.Load(),
		Replaced:  s.replaced.Load(),
	}
}
