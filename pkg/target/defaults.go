package target

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Built-in target names.
const (
	Cube  = "cube"
	Sign  = "sign"
	Donut = "donut"
)

// PausedLabel is shown while no target is dimming.
const PausedLabel = "Segmented Dimmer is paused."

// Spec describes a target before it exists.
type Spec struct {
	Name        string     `yaml:"name" json:"name"`
	Label       string     `yaml:"label" json:"label"`
	Center      [3]float64 `yaml:"center" json:"center"`
	HalfExtents [3]float64 `yaml:"half_extents" json:"half_extents"`
	Position    [3]float64 `yaml:"position" json:"position"`
	Sink        string     `yaml:"sink" json:"sink"` // "material" or "websocket"
}

// Box returns the spec's local bounding box.
func (s Spec) Box() projection.Box {
	return projection.Box{
		Center:      mgl64.Vec3(s.Center),
		HalfExtents: mgl64.Vec3(s.HalfExtents),
	}
}

// DefaultSpecs are the demo scene targets: a cube, a flat sign and a donut.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			Name:        Cube,
			Label:       "Cube dimmer is activated!",
			HalfExtents: [3]float64{0.5, 0.5, 0.5},
			Position:    [3]float64{0, 0, 1.5},
			Sink:        "material",
		},
		{
			Name:        Sign,
			Label:       "Sign dimmer is activated!",
			HalfExtents: [3]float64{0.5, 0.35, 0.02},
			Position:    [3]float64{0.8, 0.1, 2.0},
			Sink:        "material",
		},
		{
			Name:        Donut,
			Label:       "Donut dimmer is activated!",
			HalfExtents: [3]float64{0.3, 0.1, 0.3},
			Position:    [3]float64{-0.6, -0.2, 1.2},
			Sink:        "material",
		},
	}
}

// FromSpec builds a target placed at the spec position.
func FromSpec(s Spec, out Output) *Target {
	t := New(s.Name, s.Label, s.Box(), out)
	tr := projection.IdentityTransform()
	tr.Position = mgl64.Vec3(s.Position)
	t.SetTransform(tr)
	return t
}
