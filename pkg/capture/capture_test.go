package capture

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-dimmer/internal/log"
	"github.com/teslashibe/go-dimmer/pkg/frame"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Validate())
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, 30, cfg.Framerate)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestGetPreset(t *testing.T) {
	for _, name := range []string{PresetDefault, Preset1080p, PresetVGA} {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.Empty(t, cfg.Validate(), name)
	}
	assert.Nil(t, GetPreset("nope"))
}

func TestConfigValidate_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 10
	cfg.Framerate = 0
	cfg.PollInterval = 0
	cfg.HorizontalFOV = 200

	assert.Len(t, cfg.Validate(), 4)
}

func paddedPlane(w, h, pad int, fill func(x, y int) [4]byte) frame.Plane {
	stride := w*4 + pad
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := fill(x, y)
			copy(data[y*stride+x*4:], px[:])
		}
	}
	return frame.Plane{Width: w, Height: h, Stride: stride, PixelStride: 4, Data: data}
}

func TestSource_PublishPlane(t *testing.T) {
	src := NewSource(false)
	assert.False(t, src.Active())
	assert.Nil(t, src.Latest())

	src.SetActive(true)
	p := paddedPlane(4, 2, 8, func(x, y int) [4]byte { return [4]byte{byte(x), byte(y), 0, 255} })
	ts := time.Unix(100, 0)
	require.NoError(t, src.PublishPlane(p, ts, nil))

	f := src.Latest()
	require.NotNil(t, f)
	assert.Equal(t, ts, f.Timestamp)
	assert.Equal(t, 16, f.Image.Stride)
	c := f.Image.RGBAAt(3, 1)
	assert.Equal(t, uint8(3), c.R)
	assert.Equal(t, uint8(1), c.G)

	st := src.Stats()
	assert.True(t, st.Active)
	assert.Equal(t, uint64(1), st.Published)
}

func TestSource_FlipVertical(t *testing.T) {
	src := NewSource(true)
	p := paddedPlane(2, 3, 0, func(x, y int) [4]byte { return [4]byte{byte(y * 10), 0, 0, 255} })
	require.NoError(t, src.PublishPlane(p, time.Now(), nil))

	img := src.Latest().Image
	assert.Equal(t, uint8(20), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 2).R)
}

func TestSource_RejectsBadPlane(t *testing.T) {
	src := NewSource(false)
	err := src.PublishPlane(frame.Plane{Width: 2, Height: 2, PixelStride: 3, Data: make([]byte, 12)}, time.Now(), nil)

	assert.ErrorIs(t, err, frame.ErrPixelFormat)
	assert.Nil(t, src.Latest())
	assert.Equal(t, uint64(1), src.Stats().Errors)
}

func TestSource_DeactivateClearsFrame(t *testing.T) {
	src := NewSource(false)
	src.SetActive(true)
	require.NoError(t, src.PublishPlane(paddedPlane(1, 1, 0, func(int, int) [4]byte { return [4]byte{} }), time.Now(), nil))
	require.NotNil(t, src.Latest())

	src.SetActive(false)
	assert.False(t, src.Active())
	assert.Nil(t, src.Latest())
}

func TestWaitForDevice_RetriesUntilOpen(t *testing.T) {
	attempts := 0
	dev, err := WaitForDevice(context.Background(), 5*time.Millisecond, log.Discard(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("busy")
		}
		return "cam0", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "cam0", dev)
	assert.Equal(t, 3, attempts)
}

func TestWaitForDevice_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WaitForDevice(ctx, time.Hour, log.Discard(), func() (int, error) {
		return 0, errors.New("missing")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIntrinsicsFromFOV(t *testing.T) {
	in := IntrinsicsFromFOV(1280, 720, 90)

	assert.InDelta(t, 640, in.FocalX, 1e-9)
	assert.Equal(t, in.FocalX, in.FocalY)
	assert.Equal(t, 640.0, in.PrincipalX)
	assert.Equal(t, 360.0, in.PrincipalY)
	assert.True(t, in.Valid())
}

func TestStaticPoses(t *testing.T) {
	poses := NewStaticPoses(nil)

	_, ok := poses.Intrinsics(time.Now())
	assert.False(t, ok)

	in := IntrinsicsFromFOV(640, 480, 60)
	poses.SetIntrinsics(&in)
	got, ok := poses.Intrinsics(time.Now())
	require.True(t, ok)
	assert.Equal(t, in, got)

	viewer := projection.Pose{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}),
	}
	poses.SetViewer(viewer)
	v, ok := poses.ViewerPose()
	require.True(t, ok)
	assert.Equal(t, viewer, v)

	poses.SetCamera(projection.Pose{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent()})
	m, ok := poses.FramePose(time.Now())
	require.True(t, ok)
	assert.InDelta(t, 1.0, m.Col(3).Y(), 1e-12)
}
