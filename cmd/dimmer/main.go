// Dimmer drives a segmented dimming overlay from the luminance of the camera
// image behind the selected target.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-dimmer/internal/config"
	"github.com/teslashibe/go-dimmer/internal/log"
	"github.com/teslashibe/go-dimmer/pkg/app"
	"github.com/teslashibe/go-dimmer/pkg/capture"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := parseFlags(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Scene.LogLevel)

	a, err := app.New(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if err := a.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer a.Shutdown()

	if err := a.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
}

// parseFlags loads the scene file and applies flag and environment overrides.
func parseFlags(ctx context.Context) (app.Config, error) {
	cfg := app.DefaultConfig()

	path := flag.String("config", "", "Scene config file or URL (overrides DIMMER_CONFIG)")
	debugText := flag.Bool("debug", false, "Print on-screen debug text to stdout")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	port := flag.String("port", "", "Dashboard port (overrides DIMMER_PORT)")
	sinkURL := flag.String("sink-url", "", "Rendering host websocket URL (overrides DIMMER_SINK_URL)")
	active := flag.String("target", "", "Target to activate at startup")
	preset := flag.String("preset", "", "Dimmer preset: default, dense, fast")
	camPreset := flag.String("camera", "", "Camera preset: default, 1080p, vga")
	device := flag.Int("device", -1, "Camera device index")
	noCamera := flag.Bool("no-camera", false, "Do not open a camera")
	hostFrames := flag.Bool("host-frames", false, "Take camera frames from the rendering host link")
	noWeb := flag.Bool("no-web", false, "Disable the dashboard")
	flag.Parse()

	scene, err := config.Load(ctx, config.Path(*path))
	if err != nil {
		return cfg, err
	}
	scene.ApplyEnv()

	switch *preset {
	case "":
	case "default":
		scene.Dimmer = dimmer.DefaultConfig()
	case "dense":
		scene.Dimmer = dimmer.DenseConfig()
	case "fast":
		scene.Dimmer = dimmer.FastConfig()
	default:
		return cfg, fmt.Errorf("unknown preset %q", *preset)
	}
	if *camPreset != "" {
		p := capture.GetPreset(*camPreset)
		if p == nil {
			return cfg, fmt.Errorf("unknown camera preset %q", *camPreset)
		}
		p.DeviceID = scene.Capture.DeviceID
		p.FlipVertical = scene.Capture.FlipVertical
		scene.Capture = *p
	}
	if *device >= 0 {
		scene.Capture.DeviceID = *device
	}
	if *logLevel != "" {
		scene.LogLevel = *logLevel
	}
	if *port != "" {
		scene.Web.Port = *port
	}
	if *sinkURL != "" {
		scene.Sink.URL = *sinkURL
	}
	if *hostFrames {
		scene.Sink.HostFrames = true
	}
	if *active != "" {
		scene.Active = *active
	}

	cfg.Scene = scene
	cfg.Debug = *debugText
	cfg.NoCamera = *noCamera
	cfg.NoWeb = *noWeb
	return cfg, nil
}
