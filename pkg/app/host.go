package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-dimmer/pkg/capture/webcam"
	"github.com/teslashibe/go-dimmer/pkg/frame"
	"github.com/teslashibe/go-dimmer/pkg/projection"
	"github.com/teslashibe/go-dimmer/pkg/protocol"
)

// handleHost applies a message from the rendering host. It runs on the link's
// read goroutine.
func (a *App) handleHost(msg *protocol.Message) {
	var err error
	switch msg.Type {
	case protocol.TypePose:
		err = a.applyPose(msg)
	case protocol.TypeTransform:
		err = a.applyTransform(msg)
	case protocol.TypeCommand:
		err = a.applyCommand(msg)
	case protocol.TypeFrame:
		if !a.config.Scene.Sink.HostFrames {
			return
		}
		err = a.applyFrame(msg)
	default:
		a.logger.Debug("ignoring host message", "type", msg.Type)
		return
	}
	if err != nil {
		a.logger.Warn("host message rejected", "type", msg.Type, "error", err)
	}
}

func (a *App) applyPose(msg *protocol.Message) error {
	data, err := msg.GetPoseData()
	if err != nil {
		return err
	}
	if data.Viewer != nil {
		a.poses.SetViewer(data.Viewer.Pose())
	}
	if data.Camera != nil {
		a.poses.SetCamera(data.Camera.Pose())
	}
	if data.Intrinsics != nil {
		if !data.Intrinsics.Valid() {
			return errors.New("intrinsics focal lengths must be positive")
		}
		a.poses.SetIntrinsics(data.Intrinsics)
	}
	return nil
}

func (a *App) applyTransform(msg *protocol.Message) error {
	data, err := msg.GetTransformData()
	if err != nil {
		return err
	}
	return a.targets.UpdateTransform(data.Target, data.Transform())
}

func (a *App) applyCommand(msg *protocol.Message) error {
	data, err := msg.GetCommandData()
	if err != nil {
		return err
	}
	switch data.Action {
	case protocol.ActionSelect:
		t, err := a.targets.Get(data.Target)
		if err != nil {
			return err
		}
		a.controller.Activate(t)
	case protocol.ActionEnable:
		a.controller.Enable()
	case protocol.ActionDisable:
		a.controller.Disable()
	default:
		return fmt.Errorf("unknown action %q", data.Action)
	}
	a.logger.Info("host command", "action", data.Action, "target", data.Target)
	return nil
}

// applyFrame publishes a host frame. A camera pose on the frame wins over the
// last pose message.
func (a *App) applyFrame(msg *protocol.Message) error {
	data, err := msg.GetFrameData()
	if err != nil {
		return err
	}
	raw, err := data.DecodeFrameData()
	if err != nil {
		return fmt.Errorf("frame data: %w", err)
	}

	var plane frame.Plane
	switch data.Format {
	case protocol.FormatRGBA, "":
		plane = frame.Plane{
			Width:       data.Width,
			Height:      data.Height,
			Stride:      data.Stride,
			PixelStride: frame.BytesPerPixel,
			Data:        raw,
		}
	case protocol.FormatJPEG:
		if plane, err = webcam.DecodeImage(raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown frame format %q", data.Format)
	}

	ts := msg.Time()
	if ts.IsZero() {
		ts = time.Now()
	}

	var pose *projection.CameraPose
	if data.Camera != nil {
		in := data.Intrinsics
		if in == nil {
			if known, ok := a.poses.Intrinsics(ts); ok {
				in = &known
			}
		}
		pose = &projection.CameraPose{
			CameraToWorld: data.Camera.Pose().Matrix(),
			Intrinsics:    in,
			Timestamp:     ts,
		}
	} else if data.Intrinsics != nil {
		a.poses.SetIntrinsics(data.Intrinsics)
	}

	if !a.source.Active() {
		a.source.SetActive(true)
	}
	return a.source.PublishPlane(plane, ts, pose)
}
