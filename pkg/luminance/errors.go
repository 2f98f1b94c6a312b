package luminance

import "errors"

var (
	// ErrNoMeasurement means the clipped sample region contained no pixels.
	ErrNoMeasurement = errors.New("luminance: no pixels in sample region")

	// ErrInvalidStride means a stride below 1 was requested.
	ErrInvalidStride = errors.New("luminance: stride must be at least 1")

	// ErrNoImage means a nil frame was passed in.
	ErrNoImage = errors.New("luminance: nil image")
)
