// Package frame holds camera frames on their way into the dimming pipeline:
// raw plane normalization, the latest-frame slot and the staging buffer.
package frame

import (
	"errors"
	"fmt"
	"image"
)

// BytesPerPixel is the only pixel stride the pipeline accepts (RGBA8).
const BytesPerPixel = 4

var (
	// ErrPixelFormat means the plane is not 4 bytes per pixel.
	ErrPixelFormat = errors.New("frame: unsupported pixel stride")

	// ErrShortPlane means the plane has fewer bytes than its geometry claims.
	ErrShortPlane = errors.New("frame: plane shorter than stride*height")

	// ErrEmptyPlane means width or height is zero.
	ErrEmptyPlane = errors.New("frame: empty plane")
)

// Plane is one raw RGBA8 image as delivered by a camera driver.
// Stride may include alignment padding at the end of each row.
type Plane struct {
	Width       int
	Height      int
	Stride      int // bytes per row, >= Width*PixelStride
	PixelStride int // bytes per pixel
	Data        []byte
}

// Padded reports whether rows carry trailing alignment bytes.
func (p Plane) Padded() bool {
	return p.Stride > p.Width*p.PixelStride
}

// NormalizeOptions controls how a plane becomes a dense image.
type NormalizeOptions struct {
	// FlipVertical reverses row order; some capture paths deliver bottom-up.
	FlipVertical bool
}

// Normalize converts a plane into a dense *image.RGBA, stripping row padding.
// If dst has the right bounds it is reused, otherwise a new image is allocated.
func Normalize(p Plane, opts NormalizeOptions, dst *image.RGBA) (*image.RGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, ErrEmptyPlane
	}
	if p.PixelStride != BytesPerPixel {
		return nil, fmt.Errorf("%w: %d", ErrPixelFormat, p.PixelStride)
	}
	rowBytes := p.Width * BytesPerPixel
	stride := p.Stride
	if stride == 0 {
		stride = rowBytes
	}
	if stride < rowBytes {
		return nil, fmt.Errorf("%w: stride %d < row %d", ErrShortPlane, stride, rowBytes)
	}
	// the last row need not carry padding
	if need := stride*(p.Height-1) + rowBytes; len(p.Data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortPlane, len(p.Data), need)
	}

	bounds := image.Rect(0, 0, p.Width, p.Height)
	if dst == nil || dst.Rect != bounds {
		dst = image.NewRGBA(bounds)
	}

	for y := 0; y < p.Height; y++ {
		srcY := y
		if opts.FlipVertical {
			srcY = p.Height - 1 - y
		}
		src := p.Data[srcY*stride : srcY*stride+rowBytes]
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowBytes], src)
	}

	return dst, nil
}
