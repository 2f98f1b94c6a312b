package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-dimmer/internal/log"
	"github.com/teslashibe/go-dimmer/pkg/capture"
	"github.com/teslashibe/go-dimmer/pkg/capture/webcam"
	"github.com/teslashibe/go-dimmer/pkg/debug"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
	"github.com/teslashibe/go-dimmer/pkg/frame"
	"github.com/teslashibe/go-dimmer/pkg/perf"
	"github.com/teslashibe/go-dimmer/pkg/sink"
	"github.com/teslashibe/go-dimmer/pkg/target"
	"github.com/teslashibe/go-dimmer/pkg/web"
	"golang.org/x/sync/errgroup"
)

// perfInterval is how often host load is sampled
const perfInterval = 2 * time.Second

// App is the dimmer application orchestrator.
// It owns all components and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger

	// Inputs
	source *capture.Source
	poses  *capture.StaticPoses
	device *webcam.Device

	// Scene
	targets   *target.Registry
	materials []*sink.Material
	link      *sink.Link

	// Control
	board      *debug.Board
	controller *dimmer.Controller

	// Observability
	preview   *web.Preview
	monitor   *perf.Monitor
	webServer *web.Server
}

// New creates an application with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	debug.Enabled = cfg.Debug

	return &App{
		config: cfg,
		logger: log.Component("app"),
	}, nil
}

// Init builds every component. Call this after New() and before Run().
func (a *App) Init() error {
	scene := a.config.Scene

	a.source = capture.NewSource(scene.Capture.FlipVertical)
	in := scene.Intrinsics()
	a.poses = capture.NewStaticPoses(&in)
	a.poses.SetCamera(scene.Pose.Camera.Pose())
	a.poses.SetViewer(scene.Pose.Viewer.Pose())

	if scene.Sink.URL != "" {
		a.link = sink.NewLink(scene.Sink.URL, log.Component("sink"))
		a.link.OnMessage(a.handleHost)
	}

	if err := a.initTargets(); err != nil {
		return fmt.Errorf("targets: %w", err)
	}

	a.board = debug.NewBoard(target.PausedLabel)
	if a.link != nil {
		a.board.OnChange(func(snap debug.Snapshot) {
			a.link.PublishStatus(snap.Label, snap.Text)
		})
	}
	a.preview = web.NewPreview(scene.Preview, log.Component("web"))
	a.controller = dimmer.New(scene.Dimmer, a.source, a.poses,
		dimmer.WithStateUpdater(a.board),
		dimmer.WithObserver(a.preview.Observe),
		dimmer.WithPool(frame.NewPool()),
		dimmer.WithLogger(log.Component("dimmer")))

	a.monitor = perf.NewMonitor(log.Component("perf"))

	if !a.config.NoCamera && !scene.Sink.HostFrames {
		a.device = webcam.New(scene.Capture, a.source, log.Component("camera"))
		a.device.OnStart(a.cameraStarted)
	}

	if !a.config.NoWeb {
		a.webServer = web.NewServer(web.Options{
			Port:       scene.Web.Port,
			Controller: a.controller,
			Targets:    a.targets,
			Board:      a.board,
			Capture:    a.source,
			Perf:       a.monitor,
			Preview:    a.preview,
			Materials:  a.materials,
			Link:       a.link,
			StaticDir:  scene.Web.StaticDir,
			AccessLog:  scene.Web.AccessLog,
			Logger:     log.L(),
		})
	}

	if scene.Active != "" {
		t, err := a.targets.Get(scene.Active)
		if err != nil {
			return err
		}
		a.controller.Activate(t)
	}

	a.logger.Info("dimmer initialized",
		"targets", a.targets.Len(),
		"host_link", a.link != nil,
		"camera", a.device != nil,
		"config", scene.Dimmer.String())
	return nil
}

// initTargets builds the catalog. Every target gets an in-process material
// for read-back; websocket targets also push over the host link.
func (a *App) initTargets() error {
	scene := a.config.Scene
	a.targets = target.NewRegistry()

	for _, spec := range scene.Targets {
		m := sink.NewMaterial(spec.Name)
		a.materials = append(a.materials, m)

		var out target.Output = m
		if spec.Sink == "websocket" {
			if a.link == nil {
				a.logger.Warn("websocket sink without url, using material only", "target", spec.Name)
			} else {
				out = sink.Multi{m, a.link.Output(spec.Name)}
			}
		}

		if err := a.targets.Add(target.FromSpec(spec, out)); err != nil {
			return err
		}
	}
	return nil
}

// cameraStarted rebuilds the FOV estimate for the negotiated capture size.
// Calibrated intrinsics are kept and rescaled per frame by the controller.
func (a *App) cameraStarted(width, height int) {
	scene := a.config.Scene
	if scene.Pose.Intrinsics != nil {
		return
	}
	if width == scene.Capture.Width && height == scene.Capture.Height {
		return
	}
	in := capture.IntrinsicsFromFOV(width, height, scene.Capture.HorizontalFOV)
	a.poses.SetIntrinsics(&in)
	a.logger.Info("camera mode differs from request, intrinsics rebuilt",
		"requested", fmt.Sprintf("%dx%d", scene.Capture.Width, scene.Capture.Height),
		"negotiated", fmt.Sprintf("%dx%d", width, height))
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.controller.Run(ctx)
		return nil
	})
	g.Go(func() error {
		a.monitor.Run(ctx, perfInterval)
		return nil
	})
	if a.device != nil {
		g.Go(func() error { return a.device.Run(ctx) })
	}
	if a.link != nil {
		g.Go(func() error { return a.link.Run(ctx) })
	}
	if a.webServer != nil {
		g.Go(func() error { return a.webServer.Run(ctx) })
	}

	a.logger.Info("dimmer running")
	return g.Wait()
}

// Shutdown pauses dimming so outputs stop changing.
func (a *App) Shutdown() {
	if a.controller != nil {
		a.controller.Disable()
	}
	a.logger.Info("dimmer stopped")
}

// Controller returns the dimming controller.
func (a *App) Controller() *dimmer.Controller {
	return a.controller
}

// Source returns the frame source the camera publishes into.
func (a *App) Source() *capture.Source {
	return a.source
}

// Targets returns the target catalog.
func (a *App) Targets() *target.Registry {
	return a.targets
}

// Link returns the host link, or nil when no sink url is configured.
func (a *App) Link() *sink.Link {
	return a.link
}

// Materials returns the in-process outputs in catalog order.
func (a *App) Materials() []*sink.Material {
	return a.materials
}
