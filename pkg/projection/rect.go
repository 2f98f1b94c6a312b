package projection

import "github.com/golang/geo/r2"

// ScreenRect is the JSON friendly form of a projected rectangle.
type ScreenRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToScreenRect converts an r2.Rect into origin plus size.
func ToScreenRect(r r2.Rect) ScreenRect {
	if r.IsEmpty() {
		return ScreenRect{}
	}
	size := r.Size()
	return ScreenRect{X: r.X.Lo, Y: r.Y.Lo, Width: size.X, Height: size.Y}
}

// Rect converts back into an r2.Rect.
func (s ScreenRect) Rect() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: s.X, Y: s.Y}, r2.Point{X: s.X + s.Width, Y: s.Y + s.Height})
}
