// Package web provides the dimmer dashboard: a JSON command API plus live
// status, log and camera preview websockets.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-dimmer/pkg/capture"
	"github.com/teslashibe/go-dimmer/pkg/debug"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
	"github.com/teslashibe/go-dimmer/pkg/hub"
	"github.com/teslashibe/go-dimmer/pkg/perf"
	"github.com/teslashibe/go-dimmer/pkg/sink"
	"github.com/teslashibe/go-dimmer/pkg/target"
)

const (
	maxLogs        = 500
	statusInterval = 250 * time.Millisecond
)

// LogEntry is a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, command, dimmer, error
	Message string `json:"message"`
}

// Options wires the server to the running pipeline. Only Controller and
// Targets are required.
type Options struct {
	Port       string
	Controller *dimmer.Controller
	Targets    *target.Registry
	Board      *debug.Board
	Capture    *capture.Source
	Perf       *perf.Monitor
	Preview    *Preview
	Materials  []*sink.Material
	Link       *sink.Link
	StaticDir  string
	AccessLog  bool
	Logger     *slog.Logger
}

// Server is the web dashboard server
type Server struct {
	app  *fiber.App
	opts Options
	log  *slog.Logger

	logs   []LogEntry
	logsMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
}

// NewServer creates the dashboard server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	l := opts.Logger.With("component", "web")

	s := &Server{
		opts:      opts,
		log:       l,
		logs:      make([]LogEntry, 0, maxLogs),
		statusHub: hub.New("status", l),
		logHub:    hub.New("logs", l),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Dimmer Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/targets", s.handleListTargets)
	api.Post("/targets/:name/select", s.handleSelectTarget)
	api.Put("/targets/:name/transform", s.handleSetTransform)
	api.Post("/dimmer/enable", s.handleEnable)
	api.Post("/dimmer/disable", s.handleDisable)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)
	api.Get("/materials", s.handleMaterials)
	api.Get("/logs", s.handleGetLogs)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	if opts.Preview != nil {
		app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	}

	if opts.Board != nil {
		opts.Board.OnChange(func(snap debug.Snapshot) {
			s.statusHub.BroadcastJSON("board", snap)
		})
	}

	s.app = app
	return s
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	go s.statusHub.Run(ctx)
	go s.logHub.Run(ctx)
	if s.opts.Preview != nil {
		go s.opts.Preview.Run(ctx)
	}
	go s.statusLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web dashboard listening", "url", "http://localhost:"+s.opts.Port)
		errCh <- s.app.Listen(":" + s.opts.Port)
	}()

	select {
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	case err := <-errCh:
		return err
	}
}

func (s *Server) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			s.statusHub.BroadcastJSON("status", s.status())
		}
	}
}

// AddLog adds a log entry and broadcasts it to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON("log", entry)
}

// StatusResponse is the full dashboard state
type StatusResponse struct {
	Dimmer    dimmer.Status        `json:"dimmer"`
	Board     *debug.Snapshot      `json:"board,omitempty"`
	Capture   *capture.SourceStats `json:"capture,omitempty"`
	Host      *perf.Snapshot       `json:"host,omitempty"`
	Materials []sink.MaterialState `json:"materials,omitempty"`
	Link      *sink.LinkStats      `json:"link,omitempty"`
	Clients   int                  `json:"clients"`
}

func (s *Server) status() StatusResponse {
	resp := StatusResponse{
		Dimmer:    s.opts.Controller.Status(),
		Materials: s.materials(),
		Clients:   s.statusHub.ClientCount(),
	}
	if s.opts.Board != nil {
		snap := s.opts.Board.Snapshot()
		resp.Board = &snap
	}
	if s.opts.Capture != nil {
		st := s.opts.Capture.Stats()
		resp.Capture = &st
	}
	if s.opts.Perf != nil {
		snap := s.opts.Perf.Snapshot()
		resp.Host = &snap
	}
	if s.opts.Link != nil {
		st := s.opts.Link.Stats()
		resp.Link = &st
	}
	return resp
}

func (s *Server) materials() []sink.MaterialState {
	out := make([]sink.MaterialState, 0, len(s.opts.Materials))
	for _, m := range s.opts.Materials {
		out = append(out, m.State())
	}
	return out
}
