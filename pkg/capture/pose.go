package capture

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// StaticPoses is a pose provider for a rig where the camera and viewer do not
// move, or are moved explicitly (dashboard, config reload). It ignores frame
// timestamps.
type StaticPoses struct {
	mu         sync.RWMutex
	viewer     projection.Pose
	camera     mgl64.Mat4
	intrinsics *projection.Intrinsics
}

// NewStaticPoses creates a provider with viewer and camera both at the
// origin looking down +Z. intrinsics may be nil.
func NewStaticPoses(intrinsics *projection.Intrinsics) *StaticPoses {
	return &StaticPoses{
		viewer:     projection.Pose{Rotation: mgl64.QuatIdent()},
		camera:     mgl64.Ident4(),
		intrinsics: intrinsics,
	}
}

// IntrinsicsFromFOV derives pinhole intrinsics from a horizontal field of
// view, assuming square pixels and a centered principal point.
func IntrinsicsFromFOV(width, height int, hfovDeg float64) projection.Intrinsics {
	f := float64(width) / (2 * math.Tan(mgl64.DegToRad(hfovDeg)/2))
	return projection.Intrinsics{
		FocalX:     f,
		FocalY:     f,
		PrincipalX: float64(width) / 2,
		PrincipalY: float64(height) / 2,
		Width:      width,
		Height:     height,
	}
}

// ViewerPose returns the viewer pose.
func (s *StaticPoses) ViewerPose() (projection.Pose, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer, true
}

// FramePose returns the camera-to-world matrix.
func (s *StaticPoses) FramePose(time.Time) (mgl64.Mat4, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera, true
}

// Intrinsics returns the camera intrinsics if known.
func (s *StaticPoses) Intrinsics(time.Time) (projection.Intrinsics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.intrinsics == nil {
		return projection.Intrinsics{}, false
	}
	return *s.intrinsics, true
}

// SetViewer moves the viewer.
func (s *StaticPoses) SetViewer(p projection.Pose) {
	s.mu.Lock()
	s.viewer = p
	s.mu.Unlock()
}

// SetCamera moves the camera.
func (s *StaticPoses) SetCamera(p projection.Pose) {
	s.mu.Lock()
	s.camera = p.Matrix()
	s.mu.Unlock()
}

// SetIntrinsics replaces the intrinsics. nil marks them unavailable.
func (s *StaticPoses) SetIntrinsics(in *projection.Intrinsics) {
	s.mu.Lock()
	s.intrinsics = in
	s.mu.Unlock()
}
