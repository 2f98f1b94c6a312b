// Package luminance estimates the average perceptual brightness of a
// rectangular region of a camera frame by walking a strided pixel grid.
package luminance

import (
	"image"
	"image/color"
)

// BT.709 coefficients on normalized linear RGB.
const (
	CoeffR = 0.2126
	CoeffG = 0.7152
	CoeffB = 0.0722
)

// Luminance returns the BT.709 luminance of normalized r, g, b in [0,1].
func Luminance(r, g, b float64) float64 {
	return CoeffR*r + CoeffG*g + CoeffB*b
}

// lut8 maps an 8-bit channel value to its normalized weight per channel,
// so the inner loop is three table lookups and two adds.
var lutR, lutG, lutB [256]float64

func init() {
	for i := 0; i < 256; i++ {
		v := float64(i) / 255.0
		lutR[i] = CoeffR * v
		lutG[i] = CoeffG * v
		lutB[i] = CoeffB * v
	}
}

// Luminance8 returns the BT.709 luminance of 8-bit channels.
func Luminance8(r, g, b uint8) float64 {
	return lutR[r] + lutG[g] + lutB[b]
}

// OfColor returns the luminance of an arbitrary color.
func OfColor(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return Luminance8(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// pixelOffset returns the Pix index of (x, y) in img.
func pixelOffset(img *image.RGBA, x, y int) int {
	return (y-img.Rect.Min.Y)*img.Stride + (x-img.Rect.Min.X)*4
}
