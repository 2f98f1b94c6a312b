package protocol

import (
	"math"
	"testing"

	"github.com/teslashibe/go-dimmer/pkg/projection"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "dimming message",
			msgType: TypeDimming,
			data:    DimmingData{Target: "cube", Param: "_DimmingValue", Value: 0.4},
		},
		{
			name:    "pose message",
			msgType: TypePose,
			data:    PoseData{Viewer: &PoseState{Rotation: [4]float64{1, 0, 0, 0}}},
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
		},
		{
			name:    "unencodable data",
			msgType: TypeStatus,
			data:    math.NaN(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 || msg.Time().IsZero() {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestDimmingRoundTrip(t *testing.T) {
	msg, err := NewDimmingMessage("s-1", "sign", "_DimmingValue", 0.75)
	if err != nil {
		t.Fatalf("NewDimmingMessage() error = %v", err)
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	d, err := parsed.GetDimmingData()
	if err != nil {
		t.Fatalf("GetDimmingData() error = %v", err)
	}
	if d.Target != "sign" || d.Value != 0.75 || d.Session != "s-1" {
		t.Errorf("got %+v", d)
	}
}

func TestGetWrongType(t *testing.T) {
	msg, _ := NewCommandMessage(ActionDisable, "")
	if _, err := msg.GetFrameData(); err == nil {
		t.Error("GetFrameData() on a command should fail")
	}
	cmd, err := msg.GetCommandData()
	if err != nil {
		t.Fatalf("GetCommandData() error = %v", err)
	}
	if cmd.Action != ActionDisable {
		t.Errorf("Action = %q", cmd.Action)
	}
}

func TestRGBAFrameMessage(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 0, 0, 5, 6, 7, 8, 0, 0}

	msg, err := NewRGBAFrameMessage(1, 2, 6, pix, 9)
	if err != nil {
		t.Fatalf("NewRGBAFrameMessage() error = %v", err)
	}
	f, err := msg.GetFrameData()
	if err != nil {
		t.Fatalf("GetFrameData() error = %v", err)
	}
	if f.Format != FormatRGBA || f.Stride != 6 || f.FrameID != 9 {
		t.Errorf("got %+v", f)
	}
	decoded, err := f.DecodeFrameData()
	if err != nil {
		t.Fatalf("DecodeFrameData() error = %v", err)
	}
	if len(decoded) != len(pix) || decoded[6] != 5 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestParseMessageInvalid(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("ParseMessage() should fail on bad JSON")
	}
}

func TestPoseStateConversion(t *testing.T) {
	// 90 degrees about Y, unnormalized on the wire
	ps := PoseState{Position: [3]float64{1, 2, 3}, Rotation: [4]float64{2, 0, 2, 0}}
	p := ps.Pose()

	if p.Position.Z() != 3 {
		t.Errorf("Position = %v", p.Position)
	}
	fwd := p.Forward()
	if math.Abs(fwd.X()-1) > 1e-9 || math.Abs(fwd.Z()) > 1e-9 {
		t.Errorf("Forward = %v, want +X", fwd)
	}

	back := NewPoseState(p)
	if math.Abs(back.Rotation[0]-math.Sqrt2/2) > 1e-9 {
		t.Errorf("Rotation W = %v", back.Rotation[0])
	}

	if id := (PoseState{}).Pose(); id.Rotation.W != 1 {
		t.Errorf("zero rotation should be identity, got %v", id.Rotation)
	}
}

func TestTransformConversion(t *testing.T) {
	tr := TransformData{Target: "donut", Position: [3]float64{0, 0, 2}}.Transform()
	if tr.Scale.X() != 1 || tr.Rotation.W != 1 || tr.Position.Z() != 2 {
		t.Errorf("got %+v", tr)
	}

	tr = TransformData{Scale: [3]float64{2, 3, 4}}.Transform()
	if tr.Scale != [3]float64{2, 3, 4} {
		t.Errorf("Scale = %v", tr.Scale)
	}
}

func TestFrameIntrinsicsOmitted(t *testing.T) {
	msg, _ := NewJPEGFrameMessage(4, 4, []byte{0xFF, 0xD8}, 1)
	f, _ := msg.GetFrameData()
	if f.Intrinsics != nil || f.Camera != nil {
		t.Error("expected no pose on a bare frame")
	}

	withPose := FrameData{Intrinsics: &projection.Intrinsics{FocalX: 1, FocalY: 1}}
	msg, _ = NewMessage(TypeFrame, withPose)
	f, _ = msg.GetFrameData()
	if f.Intrinsics == nil || !f.Intrinsics.Valid() {
		t.Error("intrinsics lost")
	}
}
