package dimmer

import (
	"errors"

	"github.com/teslashibe/go-dimmer/pkg/luminance"
)

// Every error below means "skip this cycle". None are fatal.
var (
	ErrNoTarget             = errors.New("dimmer: no target selected")
	ErrNoViewerPose         = errors.New("dimmer: viewer pose unavailable")
	ErrNotFacing            = errors.New("dimmer: target not in front of viewer")
	ErrNoFrame              = errors.New("dimmer: no camera frame yet")
	ErrNoCameraPose         = errors.New("dimmer: camera pose unavailable")
	ErrNoIntrinsics         = errors.New("dimmer: camera intrinsics unavailable")
	ErrDegenerateProjection = errors.New("dimmer: bounding box does not project")
	ErrNoOutput             = errors.New("dimmer: target has no dimming output")
	ErrNonFinite            = errors.New("dimmer: non-finite dimming value")
	ErrSink                 = errors.New("dimmer: dimming output rejected value")
)

// Skip reason keys used in Stats.Skips.
const (
	SkipNoTarget    = "no_target"
	SkipNoViewer    = "no_viewer_pose"
	SkipNotFacing   = "not_facing"
	SkipNoFrame     = "no_frame"
	SkipNoPose      = "no_camera_pose"
	SkipNoIntrinsic = "no_intrinsics"
	SkipDegenerate  = "degenerate_projection"
	SkipEmpty       = "empty_region"
	SkipNoOutput    = "no_output"
	SkipNonFinite   = "non_finite"
	SkipSink        = "sink_error"
	SkipOther       = "other"
)

// SkipReason maps a cycle error to its stats key.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrNoTarget):
		return SkipNoTarget
	case errors.Is(err, ErrNoViewerPose):
		return SkipNoViewer
	case errors.Is(err, ErrNotFacing):
		return SkipNotFacing
	case errors.Is(err, ErrNoFrame):
		return SkipNoFrame
	case errors.Is(err, ErrNoCameraPose):
		return SkipNoPose
	case errors.Is(err, ErrNoIntrinsics):
		return SkipNoIntrinsic
	case errors.Is(err, ErrDegenerateProjection):
		return SkipDegenerate
	case errors.Is(err, luminance.ErrNoMeasurement):
		return SkipEmpty
	case errors.Is(err, ErrNoOutput):
		return SkipNoOutput
	case errors.Is(err, ErrNonFinite):
		return SkipNonFinite
	case errors.Is(err, ErrSink):
		return SkipSink
	default:
		return SkipOther
	}
}
