package projection

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

// DefaultShrinkFactor keeps the sampled box well inside the object silhouette.
const DefaultShrinkFactor = 0.25

// minDepth is the nearest camera-space depth that still projects.
const minDepth = 1e-6

// Projector turns a target's bounding box into a screen rectangle in the
// pixel space of the capturing camera.
type Projector struct {
	ShrinkFactor float64
}

// NewProjector creates a projector with the given shrink factor.
func NewProjector(shrink float64) *Projector {
	return &Projector{ShrinkFactor: shrink}
}

// Project returns the axis aligned hull of the 8 shrunk corners of box,
// placed by target and seen from pose. The rectangle is not clipped to the
// frame and may have negative or out of range coordinates.
//
// It reports false when intrinsics are unavailable, the camera pose cannot be
// inverted, or any corner lies on or behind the camera plane.
func (p *Projector) Project(target Transform, box Box, pose CameraPose) (r2.Rect, bool) {
	if pose.Intrinsics == nil || !pose.Intrinsics.Valid() {
		return r2.EmptyRect(), false
	}
	if pose.CameraToWorld.Det() == 0 {
		return r2.EmptyRect(), false
	}

	localToCamera := pose.CameraToWorld.Inv().Mul4(target.Matrix())

	corners := box.Corners(p.ShrinkFactor)
	points := make([]r2.Point, 0, len(corners))
	for _, c := range corners {
		cam := localToCamera.Mul4x1(c.Vec4(1)).Vec3()
		pt, ok := Pinhole(*pose.Intrinsics, cam)
		if !ok {
			return r2.EmptyRect(), false
		}
		points = append(points, pt)
	}

	return r2.RectFromPoints(points...), true
}

// Pinhole projects a camera-space point: u = fx*x/z + cx, v = fy*y/z + cy.
func Pinhole(in Intrinsics, cam mgl64.Vec3) (r2.Point, bool) {
	z := cam.Z()
	if z <= minDepth {
		return r2.Point{}, false
	}
	return r2.Point{
		X: in.FocalX*cam.X()/z + in.PrincipalX,
		Y: in.FocalY*cam.Y()/z + in.PrincipalY,
	}, true
}

// IsFacingCamera reports whether target lies in the half space in front of
// the viewer. A target exactly on the viewer plane does not count.
func IsFacingCamera(viewer Pose, target mgl64.Vec3) bool {
	return viewer.Forward().Dot(target.Sub(viewer.Position)) > 0
}
