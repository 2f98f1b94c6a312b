package protocol

import (
	"encoding/base64"
	"fmt"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewDimmingMessage creates a dimming value message
func NewDimmingMessage(session, target, param string, value float64) (*Message, error) {
	return NewMessage(TypeDimming, DimmingData{
		Session: session,
		Target:  target,
		Param:   param,
		Value:   value,
	})
}

// NewStatusMessage creates a status text message
func NewStatusMessage(label, text string) (*Message, error) {
	return NewMessage(TypeStatus, StatusData{Label: label, Text: text})
}

// NewRGBAFrameMessage creates a frame message from raw RGBA rows
func NewRGBAFrameMessage(width, height, stride int, pix []byte, frameID uint64) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:   width,
		Height:  height,
		Stride:  stride,
		Format:  FormatRGBA,
		Data:    base64.StdEncoding.EncodeToString(pix),
		FrameID: frameID,
	})
}

// NewJPEGFrameMessage creates a frame message from JPEG data
func NewJPEGFrameMessage(width, height int, jpegData []byte, frameID uint64) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:   width,
		Height:  height,
		Format:  FormatJPEG,
		Data:    base64.StdEncoding.EncodeToString(jpegData),
		FrameID: frameID,
	})
}

// NewPoseMessage creates a pose update message
func NewPoseMessage(pose PoseData) (*Message, error) {
	return NewMessage(TypePose, pose)
}

// NewTransformMessage creates a target transform message
func NewTransformMessage(t TransformData) (*Message, error) {
	return NewMessage(TypeTransform, t)
}

// NewCommandMessage creates a command message
func NewCommandMessage(action, target string) (*Message, error) {
	return NewMessage(TypeCommand, CommandData{Action: action, Target: target})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

func parse[T any](m *Message, want MessageType) (*T, error) {
	if m.Type != want {
		return nil, fmt.Errorf("protocol: message is %q, not %q", m.Type, want)
	}
	var data T
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetDimmingData extracts dimming data from a message
func (m *Message) GetDimmingData() (*DimmingData, error) {
	return parse[DimmingData](m, TypeDimming)
}

// GetStatusData extracts status data from a message
func (m *Message) GetStatusData() (*StatusData, error) {
	return parse[StatusData](m, TypeStatus)
}

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	return parse[FrameData](m, TypeFrame)
}

// DecodeFrameData decodes the base64 image data
func (f *FrameData) DecodeFrameData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// GetPoseData extracts pose data from a message
func (m *Message) GetPoseData() (*PoseData, error) {
	return parse[PoseData](m, TypePose)
}

// GetTransformData extracts transform data from a message
func (m *Message) GetTransformData() (*TransformData, error) {
	return parse[TransformData](m, TypeTransform)
}

// GetCommandData extracts command data from a message
func (m *Message) GetCommandData() (*CommandData, error) {
	return parse[CommandData](m, TypeCommand)
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	return parse[PingData](m, TypePing)
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	return parse[PongData](m, TypePong)
}
