package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
	"github.com/teslashibe/go-dimmer/pkg/hub"
	"github.com/teslashibe/go-dimmer/pkg/projection"
	"github.com/teslashibe/go-dimmer/pkg/target"
)

// handleStatus returns the dashboard state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

// handleListTargets returns the target catalog
func (s *Server) handleListTargets(c *fiber.Ctx) error {
	active := s.opts.Controller.Target()
	list := s.opts.Targets.List()
	out := make([]target.Info, 0, len(list))
	for _, t := range list {
		info := t.Info()
		info.Selected = t == active
		out = append(out, info)
	}
	return c.JSON(out)
}

func (s *Server) lookup(c *fiber.Ctx) (*target.Target, error) {
	t, err := s.opts.Targets.Get(c.Params("name"))
	if errors.Is(err, target.ErrNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return t, err
}

// handleSelectTarget activates dimming on a target
func (s *Server) handleSelectTarget(c *fiber.Ctx) error {
	t, err := s.lookup(c)
	if t == nil {
		return err
	}
	s.opts.Controller.Activate(t)
	s.AddLog("command", "Selected "+t.Name)
	return c.JSON(t.Info())
}

// handleSetTransform moves a target in world space
func (s *Server) handleSetTransform(c *fiber.Ctx) error {
	t, err := s.lookup(c)
	if t == nil {
		return err
	}
	var tr projection.Transform
	if err := c.BodyParser(&tr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transform: " + err.Error()})
	}
	t.SetTransform(tr)
	return c.JSON(t.Info())
}

// handleEnable turns sampling on
func (s *Server) handleEnable(c *fiber.Ctx) error {
	s.opts.Controller.Enable()
	s.AddLog("command", "Dimmer enabled")
	return c.JSON(s.opts.Controller.Status())
}

// handleDisable pauses sampling and clears the target
func (s *Server) handleDisable(c *fiber.Ctx) error {
	s.opts.Controller.Disable()
	s.AddLog("command", "Dimmer disabled")
	return c.JSON(s.opts.Controller.Status())
}

// handleGetTuning returns the current tuning parameters
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.opts.Controller.GetTuningParams())
}

// handleSetTuning applies non-zero tuning parameters
func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	var params dimmer.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON: " + err.Error()})
	}
	if err := s.opts.Controller.SetTuningParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	updated := s.opts.Controller.GetTuningParams()
	s.AddLog("command", fmt.Sprintf("Tuning: stride %dx%d, interval %.0fms, shrink %.3g, gain %.3g",
		updated.StrideX, updated.StrideY, updated.SampleIntervalMs, updated.ShrinkFactor, updated.Gain))
	return c.JSON(updated)
}

// handleMaterials returns in-process material states
func (s *Server) handleMaterials(c *fiber.Ctx) error {
	return c.JSON(s.materials())
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStatusWS sends the current status then streams updates
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if msg, err := hub.Encode("status", s.status()); err == nil {
		c.WriteMessage(websocket.TextMessage, msg.Data)
	}
	hub.NewClient(s.statusHub, c).Run()
}

// handleLogsWS replays the log buffer then streams new entries
func (s *Server) handleLogsWS(c *websocket.Conn) {
	s.logsMu.RLock()
	for _, entry := range s.logs {
		if msg, err := hub.Encode("log", entry); err == nil {
			c.WriteMessage(websocket.TextMessage, msg.Data)
		}
	}
	s.logsMu.RUnlock()
	hub.NewClient(s.logHub, c).Run()
}

// handleCameraWS streams JPEG previews with the sampled rectangle drawn in
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.opts.Preview.Hub(), c).Run()
}
