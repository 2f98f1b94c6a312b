package dimmer

import (
	"fmt"
	"image"

	"github.com/golang/geo/r2"
	"github.com/teslashibe/go-dimmer/pkg/luminance"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// Measurement is the outcome of projecting a target and sampling behind it.
type Measurement struct {
	Rect   r2.Rect
	Sample luminance.Result
}

// Measure projects box (placed by tr) into the camera described by pose and
// samples img inside the projected rectangle. Intrinsics recorded for another
// resolution are rescaled to img first.
func Measure(p *projection.Projector, img *image.RGBA, tr projection.Transform, box projection.Box,
	pose projection.CameraPose, strideX, strideY int) (Measurement, error) {

	if pose.Intrinsics == nil {
		return Measurement{}, ErrNoIntrinsics
	}
	size := img.Bounds().Size()
	in := pose.Intrinsics.ScaledTo(size.X, size.Y)
	pose.Intrinsics = &in

	rect, ok := p.Project(tr, box, pose)
	if !ok {
		return Measurement{}, ErrDegenerateProjection
	}

	res, err := luminance.Sample(img, rect, strideX, strideY)
	if err != nil {
		return Measurement{Rect: rect, Sample: res}, fmt.Errorf("sample: %w", err)
	}

	return Measurement{Rect: rect, Sample: res}, nil
}
