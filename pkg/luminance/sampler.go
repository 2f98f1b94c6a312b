package luminance

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// Result is one luminance measurement.
type Result struct {
	Mean   float64         `json:"mean"`   // Average luminance in [0,1]
	Count  int             `json:"count"`  // Pixels visited
	Region image.Rectangle `json:"region"` // Clipped pixel region that was walked
}

// Clip converts a continuous screen rectangle into the pixel region it covers
// inside bounds. Each axis is clamped independently and both edges are
// truncated to whole pixels, so the result is [floor(lo), floor(hi)) and may
// be empty.
func Clip(rect r2.Rect, bounds image.Rectangle) image.Rectangle {
	if rect.IsEmpty() || hasNaN(rect) {
		return image.Rectangle{}
	}

	x0 := clampInt(floorInt(rect.X.Lo), bounds.Min.X, bounds.Max.X)
	x1 := clampInt(floorInt(rect.X.Hi), bounds.Min.X, bounds.Max.X)
	y0 := clampInt(floorInt(rect.Y.Lo), bounds.Min.Y, bounds.Max.Y)
	y1 := clampInt(floorInt(rect.Y.Hi), bounds.Min.Y, bounds.Max.Y)

	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}
	}
	return image.Rect(x0, y0, x1, y1)
}

// Sample walks rect inside img every strideX columns and strideY rows and
// returns the mean BT.709 luminance of the visited pixels.
//
// The visited count is exactly ceil(w/strideX) * ceil(h/strideY) for the
// clipped region of size w x h. An empty clipped region yields
// ErrNoMeasurement; the mean is never NaN or Inf.
func Sample(img *image.RGBA, rect r2.Rect, strideX, strideY int) (Result, error) {
	if img == nil {
		return Result{}, ErrNoImage
	}
	if strideX < 1 || strideY < 1 {
		return Result{}, fmt.Errorf("%w: got %dx%d", ErrInvalidStride, strideX, strideY)
	}

	region := Clip(rect, img.Rect)
	if region.Empty() {
		return Result{Region: region}, ErrNoMeasurement
	}

	var sum float64
	count := 0
	step := strideX * 4
	for y := region.Min.Y; y < region.Max.Y; y += strideY {
		off := pixelOffset(img, region.Min.X, y)
		for x := region.Min.X; x < region.Max.X; x += strideX {
			sum += lutR[img.Pix[off]] + lutG[img.Pix[off+1]] + lutB[img.Pix[off+2]]
			count++
			off += step
		}
	}

	if count == 0 {
		return Result{Region: region}, ErrNoMeasurement
	}

	return Result{
		Mean:   sum / float64(count),
		Count:  count,
		Region: region,
	}, nil
}

// ExpectedCount returns how many pixels Sample visits for a clipped region.
func ExpectedCount(region image.Rectangle, strideX, strideY int) int {
	if region.Empty() || strideX < 1 || strideY < 1 {
		return 0
	}
	return ceilDiv(region.Dx(), strideX) * ceilDiv(region.Dy(), strideY)
}

func hasNaN(r r2.Rect) bool {
	return math.IsNaN(r.X.Lo) || math.IsNaN(r.X.Hi) || math.IsNaN(r.Y.Lo) || math.IsNaN(r.Y.Hi)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func floorInt(v float64) int {
	if math.IsInf(v, -1) || v < math.MinInt32 {
		return math.MinInt32
	}
	if math.IsInf(v, 1) || v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
