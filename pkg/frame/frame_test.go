package frame

import (
	"bytes"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledFrame(w, h int, seed uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: seed + uint8(x), G: seed + uint8(y), B: seed, A: 255})
		}
	}
	return img
}

func TestStage_IdempotentForSameDimensions(t *testing.T) {
	s := NewStager(nil)
	src := filledFrame(8, 6, 10)

	first := s.Stage(src)
	second := s.Stage(src)

	assert.Same(t, first, second, "buffer must be reused")
	assert.Equal(t, 1, s.Reallocations())
	assert.Equal(t, src.Pix, second.Pix)
}

func TestStage_IsDeepCopy(t *testing.T) {
	s := NewStager(nil)
	src := filledFrame(4, 4, 1)

	staged := s.Stage(src)
	src.SetRGBA(0, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	assert.NotEqual(t, src.RGBAAt(0, 0), staged.RGBAAt(0, 0), "producer writes must not leak into staged copy")
}

func TestStage_ReallocatesOnResize(t *testing.T) {
	s := NewStager(NewPool())

	s.Stage(filledFrame(8, 6, 1))
	big := filledFrame(16, 12, 7)
	staged := s.Stage(big)

	require.Equal(t, image.Rect(0, 0, 16, 12), staged.Rect)
	assert.Equal(t, 2, s.Reallocations())
	assert.Equal(t, big.Pix, staged.Pix)

	s.Stage(filledFrame(16, 12, 9))
	assert.Equal(t, 2, s.Reallocations())
}

func TestStage_SubImageSource(t *testing.T) {
	s := NewStager(nil)
	full := filledFrame(10, 10, 3)
	sub := full.SubImage(image.Rect(2, 3, 7, 9)).(*image.RGBA)

	staged := s.Stage(sub)

	require.Equal(t, image.Rect(0, 0, 5, 6), staged.Rect)
	assert.Equal(t, full.RGBAAt(2, 3), staged.RGBAAt(0, 0))
	assert.Equal(t, full.RGBAAt(6, 8), staged.RGBAAt(4, 5))
}

func TestStage_Nil(t *testing.T) {
	s := NewStager(nil)
	assert.Nil(t, s.Stage(nil))
	assert.Equal(t, 0, s.Reallocations())
}

func TestNormalize_StripsRowPadding(t *testing.T) {
	const w, h, stride = 3, 2, 16 // 12 pixel bytes + 4 padding
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*stride + x*4
			copy(data[off:off+4], []byte{byte(10*y + x), 0, 0, 255})
		}
		// padding garbage
		copy(data[y*stride+12:y*stride+16], []byte{0xde, 0xad, 0xbe, 0xef})
	}

	p := Plane{Width: w, Height: h, Stride: stride, PixelStride: 4, Data: data}
	require.True(t, p.Padded())

	img, err := Normalize(p, NormalizeOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, w*4, img.Stride)
	assert.False(t, bytes.Contains(img.Pix, []byte{0xde, 0xad}))
	assert.Equal(t, uint8(12), img.RGBAAt(2, 1).R)
}

func TestNormalize_FlipVertical(t *testing.T) {
	data := []byte{
		1, 0, 0, 255, 2, 0, 0, 255,
		3, 0, 0, 255, 4, 0, 0, 255,
	}
	p := Plane{Width: 2, Height: 2, Stride: 8, PixelStride: 4, Data: data}

	img, err := Normalize(p, NormalizeOptions{FlipVertical: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(2), img.RGBAAt(1, 1).R)
}

func TestNormalize_ReusesDestination(t *testing.T) {
	p := Plane{Width: 2, Height: 1, Stride: 8, PixelStride: 4, Data: make([]byte, 8)}
	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))

	got, err := Normalize(p, NormalizeOptions{}, dst)
	require.NoError(t, err)
	assert.Same(t, dst, got)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		plane Plane
		want  error
	}{
		{"empty", Plane{Width: 0, Height: 4, PixelStride: 4}, ErrEmptyPlane},
		{"rgb24", Plane{Width: 2, Height: 2, Stride: 6, PixelStride: 3, Data: make([]byte, 12)}, ErrPixelFormat},
		{"stride too small", Plane{Width: 4, Height: 2, Stride: 8, PixelStride: 4, Data: make([]byte, 64)}, ErrShortPlane},
		{"truncated", Plane{Width: 4, Height: 2, Stride: 16, PixelStride: 4, Data: make([]byte, 20)}, ErrShortPlane},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.plane, NormalizeOptions{}, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalize_LastRowWithoutPadding(t *testing.T) {
	// Some drivers omit the padding after the final row.
	p := Plane{Width: 1, Height: 2, Stride: 8, PixelStride: 4, Data: make([]byte, 12)}
	_, err := Normalize(p, NormalizeOptions{}, nil)
	assert.NoError(t, err)
}

func TestSlot_LatestWins(t *testing.T) {
	s := NewSlot()
	assert.Nil(t, s.Latest(), "no frame yet")

	a := &Frame{Image: filledFrame(2, 2, 1)}
	b := &Frame{Image: filledFrame(2, 2, 2)}
	s.Publish(a)
	s.Publish(b)

	assert.Same(t, b, s.Latest())
	assert.Equal(t, uint64(2), b.Seq)
	assert.Equal(t, SlotStats{Published: 2, Replaced: 1}, s.Stats())

	s.Clear()
	assert.Nil(t, s.Latest())
}

func TestSlot_ConcurrentPublish(t *testing.T) {
	s := NewSlot()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Publish(&Frame{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Latest()
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(500), s.Stats().Published)
}

func TestPool_ReusesBySize(t *testing.T) {
	p := NewPool()
	r := image.Rect(0, 0, 4, 4)

	img := p.Get(r)
	require.Equal(t, r, img.Rect)
	p.Put(img)
	p.Put(image.NewRGBA(image.Rect(0, 0, 9, 9))) // unknown size, dropped

	assert.Equal(t, r, p.Get(r).Rect)
}
