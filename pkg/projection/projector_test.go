package projection

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIntrinsics() *Intrinsics {
	return &Intrinsics{FocalX: 100, FocalY: 100, PrincipalX: 64, PrincipalY: 48, Width: 128, Height: 96}
}

func targetAt(x, y, z float64) Transform {
	t := IdentityTransform()
	t.Position = mgl64.Vec3{x, y, z}
	return t
}

func TestBoxCorners_CompoundShrink(t *testing.T) {
	box := Box{Center: mgl64.Vec3{1, 2, 3}, HalfExtents: mgl64.Vec3{1, 2, 4}}
	corners := box.Corners(0.25)

	// size*0.25*0.5 = 12.5% of the full edge on each side of center
	for _, c := range corners {
		assert.InDelta(t, 0.25, math.Abs(c.X()-1), 1e-12)
		assert.InDelta(t, 0.5, math.Abs(c.Y()-2), 1e-12)
		assert.InDelta(t, 1.0, math.Abs(c.Z()-3), 1e-12)
	}

	seen := map[mgl64.Vec3]bool{}
	for _, c := range corners {
		seen[c] = true
	}
	assert.Len(t, seen, 8, "corners must be distinct")
}

func TestProject_CenteredTarget(t *testing.T) {
	p := NewProjector(DefaultShrinkFactor)
	pose := CameraPose{CameraToWorld: mgl64.Ident4(), Intrinsics: testIntrinsics()}

	r, ok := p.Project(targetAt(0, 0, 2), UnitBox(), pose)
	require.True(t, ok)

	// offset 0.125, nearest face at z=1.875
	half := 100 * 0.125 / 1.875
	assert.InDelta(t, 64-half, r.X.Lo, 1e-9)
	assert.InDelta(t, 64+half, r.X.Hi, 1e-9)
	assert.InDelta(t, 48-half, r.Y.Lo, 1e-9)
	assert.InDelta(t, 48+half, r.Y.Hi, 1e-9)
}

func TestProject_UsesInverseCameraPose(t *testing.T) {
	p := NewProjector(DefaultShrinkFactor)
	base := CameraPose{CameraToWorld: mgl64.Ident4(), Intrinsics: testIntrinsics()}
	moved := CameraPose{CameraToWorld: mgl64.Translate3D(1, -0.5, 0), Intrinsics: testIntrinsics()}

	want, ok := p.Project(targetAt(0, 0, 2), UnitBox(), base)
	require.True(t, ok)
	got, ok := p.Project(targetAt(1, -0.5, 2), UnitBox(), moved)
	require.True(t, ok)

	assert.InDelta(t, want.X.Lo, got.X.Lo, 1e-9)
	assert.InDelta(t, want.X.Hi, got.X.Hi, 1e-9)
	assert.InDelta(t, want.Y.Lo, got.Y.Lo, 1e-9)
	assert.InDelta(t, want.Y.Hi, got.Y.Hi, 1e-9)
}

func TestProject_OffCenterMayLeaveFrame(t *testing.T) {
	p := NewProjector(1.0)
	pose := CameraPose{CameraToWorld: mgl64.Ident4(), Intrinsics: testIntrinsics()}

	r, ok := p.Project(targetAt(-3, 0, 2), UnitBox(), pose)
	require.True(t, ok)
	assert.Less(t, r.X.Hi, 0.0, "rectangle is left of the frame and not clipped")
}

func TestProject_NoIntrinsics(t *testing.T) {
	p := NewProjector(DefaultShrinkFactor)

	r, ok := p.Project(targetAt(0, 0, 2), UnitBox(), CameraPose{CameraToWorld: mgl64.Ident4()})
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())

	zero := &Intrinsics{}
	_, ok = p.Project(targetAt(0, 0, 2), UnitBox(), CameraPose{CameraToWorld: mgl64.Ident4(), Intrinsics: zero})
	assert.False(t, ok)
}

func TestProject_BehindCamera(t *testing.T) {
	p := NewProjector(DefaultShrinkFactor)
	pose := CameraPose{CameraToWorld: mgl64.Ident4(), Intrinsics: testIntrinsics()}

	_, ok := p.Project(targetAt(0, 0, -2), UnitBox(), pose)
	assert.False(t, ok)
}

func TestProject_SingularPose(t *testing.T) {
	p := NewProjector(DefaultShrinkFactor)
	pose := CameraPose{Intrinsics: testIntrinsics()}

	_, ok := p.Project(targetAt(0, 0, 2), UnitBox(), pose)
	assert.False(t, ok)
}

func TestPinhole(t *testing.T) {
	pt, ok := Pinhole(*testIntrinsics(), mgl64.Vec3{1, 2, 4})
	require.True(t, ok)
	assert.Equal(t, r2.Point{X: 100*1.0/4 + 64, Y: 100*2.0/4 + 48}, pt)

	_, ok = Pinhole(*testIntrinsics(), mgl64.Vec3{1, 2, 0})
	assert.False(t, ok)
}

func TestIsFacingCamera(t *testing.T) {
	viewer := Pose{Rotation: mgl64.QuatIdent()}

	tests := []struct {
		name   string
		target mgl64.Vec3
		want   bool
	}{
		{"ahead", mgl64.Vec3{0, 0, 1}, true},
		{"ahead and left", mgl64.Vec3{-5, 1, 0.1}, true},
		{"behind", mgl64.Vec3{0, 0, -1}, false},
		{"on the plane", mgl64.Vec3{1, 0, 0}, false},
		{"at the viewer", mgl64.Vec3{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFacingCamera(viewer, tt.target))
		})
	}
}

func TestIsFacingCamera_TurnedAround(t *testing.T) {
	viewer := Pose{
		Position: mgl64.Vec3{0, 0, 5},
		Rotation: mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0}),
	}

	assert.True(t, IsFacingCamera(viewer, mgl64.Vec3{0, 0, 0}))
	assert.False(t, IsFacingCamera(viewer, mgl64.Vec3{0, 0, 10}))
}

func TestScreenRectRoundTrip(t *testing.T) {
	r := r2.RectFromPoints(r2.Point{X: -4, Y: 2}, r2.Point{X: 10, Y: 7})
	s := ToScreenRect(r)
	assert.Equal(t, ScreenRect{X: -4, Y: 2, Width: 14, Height: 5}, s)
	assert.Equal(t, r, s.Rect())
	assert.Equal(t, ScreenRect{}, ToScreenRect(r2.EmptyRect()))
}

func TestIntrinsics_ScaledTo(t *testing.T) {
	in := Intrinsics{FocalX: 960, FocalY: 960, PrincipalX: 640, PrincipalY: 360, Width: 1280, Height: 720}

	got := in.ScaledTo(640, 480)
	assert.InDelta(t, 480.0, got.FocalX, 1e-9)
	assert.InDelta(t, 640.0, got.FocalY, 1e-9)
	assert.InDelta(t, 320.0, got.PrincipalX, 1e-9)
	assert.InDelta(t, 240.0, got.PrincipalY, 1e-9)
	assert.Equal(t, 640, got.Width)
	assert.Equal(t, 480, got.Height)

	assert.Equal(t, in, in.ScaledTo(1280, 720))

	unsized := Intrinsics{FocalX: 100, FocalY: 100}
	assert.Equal(t, unsized, unsized.ScaledTo(640, 480))
}
