// Lumacheck measures one target against a still image, the way the dimmer
// would see it, and prints the projected rectangle and luminance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teslashibe/go-dimmer/internal/config"
	"github.com/teslashibe/go-dimmer/pkg/capture"
	"github.com/teslashibe/go-dimmer/pkg/capture/webcam"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
	"github.com/teslashibe/go-dimmer/pkg/projection"
	"github.com/teslashibe/go-dimmer/pkg/target"
)

func main() {
	path := flag.String("config", "", "Scene config file or URL")
	name := flag.String("target", target.Cube, "Target to measure")
	dense := flag.Bool("dense", false, "Visit every pixel instead of the configured stride")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lumacheck [-config scene.yaml] [-target cube] [-dense] image.png")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scene, err := config.Load(ctx, config.Path(*path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	img, err := webcam.ReadImage(flag.Arg(0), scene.Capture.FlipVertical)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	var spec *target.Spec
	for i := range scene.Targets {
		if scene.Targets[i].Name == *name {
			spec = &scene.Targets[i]
		}
	}
	if spec == nil {
		fmt.Fprintf(os.Stderr, "❌ target %q not in scene\n", *name)
		os.Exit(1)
	}
	tgt := target.FromSpec(*spec, nil)

	// intrinsics follow the image actually loaded, not the capture request
	in := scene.Intrinsics()
	if scene.Pose.Intrinsics == nil {
		b := img.Bounds()
		in = capture.IntrinsicsFromFOV(b.Dx(), b.Dy(), scene.Capture.HorizontalFOV)
	}
	pose := projection.CameraPose{
		CameraToWorld: scene.Pose.Camera.Pose().Matrix(),
		Intrinsics:    &in,
	}

	cfg := scene.Dimmer
	if *dense {
		cfg.StrideX, cfg.StrideY = 1, 1
	}

	viewer := scene.Pose.Viewer.Pose()
	if !projection.IsFacingCamera(viewer, tgt.Transform().Position) {
		fmt.Println("⚠️  viewer is not facing the target; the dimmer would skip this cycle")
	}

	m, err := dimmer.Measure(projection.NewProjector(cfg.ShrinkFactor), img, tgt.Transform(), tgt.Bounds, pose, cfg.StrideX, cfg.StrideY)
	rect := projection.ToScreenRect(m.Rect)
	fmt.Printf("Image:   %dx%d\n", img.Bounds().Dx(), img.Bounds().Dy())
	fmt.Printf("Target:  %s\n", tgt.Name)
	fmt.Printf("Rect:    x=%.1f y=%.1f w=%.1f h=%.1f\n", rect.X, rect.Y, rect.Width, rect.Height)
	if err != nil {
		fmt.Printf("Skipped: %s (%v)\n", dimmer.SkipReason(err), err)
		os.Exit(1)
	}
	fmt.Printf("Region:  %v (%d samples, stride %dx%d)\n", m.Sample.Region, m.Sample.Count, cfg.StrideX, cfg.StrideY)
	fmt.Printf("  Average luminance in bounding box: %v\n", m.Sample.Mean)
}
