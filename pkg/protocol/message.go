// Package protocol defines the WebSocket messages exchanged between the
// dimmer and the rendering host.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/teslashibe/go-dimmer/pkg/projection"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Dimmer → Host messages
	TypeDimming MessageType = "dimming" // New dimming value for a target
	TypeStatus  MessageType = "status"  // On-screen label and debug text

	// Host → Dimmer messages
	TypeFrame     MessageType = "frame"     // Camera frame
	TypePose      MessageType = "pose"      // Viewer / camera pose update
	TypeTransform MessageType = "transform" // Target moved
	TypeCommand   MessageType = "command"   // Select, enable, disable

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// Time returns the message timestamp, or the zero time if unset.
func (m *Message) Time() time.Time {
	if m.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.Timestamp)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Dimmer → Host Message Types
// =============================================================================

// DimmingData sets a float parameter on a target's material
type DimmingData struct {
	Session string  `json:"session"` // Dimmer process ID
	Target  string  `json:"target"`
	Param   string  `json:"param"` // Shader parameter name
	Value   float64 `json:"value"` // 0.0 to 1.0
}

// StatusData is the text the host shows in the headset
type StatusData struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// =============================================================================
// Host → Dimmer Message Types
// =============================================================================

// Frame pixel formats
const (
	FormatRGBA = "rgba" // Raw RGBA8, rows may be padded to Stride
	FormatJPEG = "jpeg"
)

// FrameData contains a camera frame and, optionally, the camera pose at
// capture time
type FrameData struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Stride  int    `json:"stride,omitempty"` // Bytes per row for rgba, 0 = dense
	Format  string `json:"format"`           // "rgba", "jpeg"
	Data    string `json:"data"`             // base64 encoded
	FrameID uint64 `json:"frame_id,omitempty"`

	Camera     *PoseState             `json:"camera,omitempty"`
	Intrinsics *projection.Intrinsics `json:"intrinsics,omitempty"`
}

// PoseState is a position plus a (w, x, y, z) rotation quaternion
type PoseState struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
}

// PoseData updates the viewer and/or camera. Nil fields are unchanged.
type PoseData struct {
	Viewer     *PoseState             `json:"viewer,omitempty"`
	Camera     *PoseState             `json:"camera,omitempty"`
	Intrinsics *projection.Intrinsics `json:"intrinsics,omitempty"`
}

// TransformData moves a target in world space
type TransformData struct {
	Target   string     `json:"target"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`        // w, x, y, z
	Scale    [3]float64 `json:"scale,omitempty"` // zero = unit
}

// Command actions
const (
	ActionSelect  = "select"
	ActionEnable  = "enable"
	ActionDisable = "disable"
)

// CommandData drives the dimmer state machine from the host UI
type CommandData struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"` // for select
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}

// =============================================================================
// Conversions
// =============================================================================

func quat(r [4]float64) mgl64.Quat {
	q := mgl64.Quat{W: r[0], V: mgl64.Vec3{r[1], r[2], r[3]}}
	if q.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// Pose converts to a projection pose. A zero rotation means identity.
func (p PoseState) Pose() projection.Pose {
	return projection.Pose{Position: mgl64.Vec3(p.Position), Rotation: quat(p.Rotation)}
}

// NewPoseState converts from a projection pose.
func NewPoseState(p projection.Pose) PoseState {
	return PoseState{
		Position: [3]float64(p.Position),
		Rotation: [4]float64{p.Rotation.W, p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2]},
	}
}

// Transform converts to a projection transform.
func (t TransformData) Transform() projection.Transform {
	tr := projection.IdentityTransform()
	tr.Position = mgl64.Vec3(t.Position)
	tr.Rotation = quat(t.Rotation)
	if t.Scale != ([3]float64{}) {
		tr.Scale = mgl64.Vec3(t.Scale)
	}
	return tr
}
