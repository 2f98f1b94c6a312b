// Package projection maps a target's 3D bounding box into the pixel space of
// a separately posed physical camera.
package projection

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid body placement with non-uniform scale.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
}

// IdentityTransform sits at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Matrix returns the local-to-world matrix (translate * rotate * scale).
func (t Transform) Matrix() mgl64.Mat4 {
	rot := t.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	scale := t.Scale
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Forward is the +Z axis of the transform in world space.
func (t Transform) Forward() mgl64.Vec3 {
	rot := t.Rotation
	if rot.Len() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return rot.Normalize().Rotate(mgl64.Vec3{0, 0, 1})
}

// Box is an axis aligned bounding box in the target's local space.
type Box struct {
	Center      mgl64.Vec3 `json:"center"`
	HalfExtents mgl64.Vec3 `json:"half_extents"`
}

// UnitBox is the bounds of a unit cube mesh.
func UnitBox() Box {
	return Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}
}

// Size returns the full edge lengths.
func (b Box) Size() mgl64.Vec3 {
	return b.HalfExtents.Mul(2)
}

// Corners returns the 8 corners of the box shrunk around its center.
// Each corner sits at center +/- size*shrink*0.5 on every axis.
func (b Box) Corners(shrink float64) [8]mgl64.Vec3 {
	off := b.Size().Mul(shrink * 0.5)
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				out[i] = b.Center.Add(mgl64.Vec3{sx * off.X(), sy * off.Y(), sz * off.Z()})
				i++
			}
		}
	}
	return out
}

// Intrinsics are pinhole camera parameters in pixels.
type Intrinsics struct {
	FocalX     float64 `json:"fx" yaml:"fx"`
	FocalY     float64 `json:"fy" yaml:"fy"`
	PrincipalX float64 `json:"cx" yaml:"cx"`
	PrincipalY float64 `json:"cy" yaml:"cy"`
	Width      int     `json:"width" yaml:"width"`
	Height     int     `json:"height" yaml:"height"`
}

// Valid reports whether the focal lengths can be used for projection.
func (in Intrinsics) Valid() bool {
	return in.FocalX > 0 && in.FocalY > 0
}

// ScaledTo returns the intrinsics for an image of width x height. Intrinsics
// calibrated at another resolution are scaled per axis; intrinsics without a
// recorded size are returned unchanged.
func (in Intrinsics) ScaledTo(width, height int) Intrinsics {
	if in.Width <= 0 || in.Height <= 0 || width <= 0 || height <= 0 {
		return in
	}
	if in.Width == width && in.Height == height {
		return in
	}
	sx := float64(width) / float64(in.Width)
	sy := float64(height) / float64(in.Height)
	return Intrinsics{
		FocalX:     in.FocalX * sx,
		FocalY:     in.FocalY * sy,
		PrincipalX: in.PrincipalX * sx,
		PrincipalY: in.PrincipalY * sy,
		Width:      width,
		Height:     height,
	}
}

// CameraPose is the physical camera's placement and intrinsics at the moment
// a frame was captured. It is a value and is never mutated after capture.
type CameraPose struct {
	CameraToWorld mgl64.Mat4
	Intrinsics    *Intrinsics // nil when unavailable
	Timestamp     time.Time
}

// Pose is a viewer position and orientation used by the facing gate.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Forward is the viewer's +Z look direction in world space.
func (p Pose) Forward() mgl64.Vec3 {
	return Transform{Rotation: p.Rotation}.Forward()
}

// Matrix returns the pose as a camera-to-world matrix.
func (p Pose) Matrix() mgl64.Mat4 {
	return Transform{Position: p.Position, Rotation: p.Rotation, Scale: mgl64.Vec3{1, 1, 1}}.Matrix()
}
