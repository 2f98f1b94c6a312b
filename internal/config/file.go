package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/teslashibe/go-dimmer/internal/httpc"
	"github.com/teslashibe/go-dimmer/pkg/capture"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
	"github.com/teslashibe/go-dimmer/pkg/projection"
	"github.com/teslashibe/go-dimmer/pkg/target"
	"github.com/teslashibe/go-dimmer/pkg/web"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("config: invalid")

// PoseSpec is a position plus a (w, x, y, z) quaternion.
type PoseSpec struct {
	Position [3]float64 `yaml:"position"`
	Rotation [4]float64 `yaml:"rotation"`
}

// Pose converts the spec. A zero rotation means identity.
func (p PoseSpec) Pose() projection.Pose {
	rot := mgl64.Quat{W: p.Rotation[0], V: mgl64.Vec3{p.Rotation[1], p.Rotation[2], p.Rotation[3]}}
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	return projection.Pose{Position: mgl64.Vec3(p.Position), Rotation: rot.Normalize()}
}

// PoseConfig places the camera and viewer for static rigs.
type PoseConfig struct {
	Camera PoseSpec `yaml:"camera"`
	Viewer PoseSpec `yaml:"viewer"`
	// Intrinsics override the FOV estimate when calibrated values exist.
	Intrinsics *projection.Intrinsics `yaml:"intrinsics,omitempty"`
}

// SinkConfig selects where dimming values go.
type SinkConfig struct {
	URL string `yaml:"url"` // rendering host websocket, empty for in-process only
	// HostFrames takes camera frames from the host link instead of a local
	// capture device.
	HostFrames bool `yaml:"host_frames"`
}

// WebConfig is the dashboard listener.
type WebConfig struct {
	Port      string `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	AccessLog bool   `yaml:"access_log"`
}

// File is the on-disk scene and tuning description.
type File struct {
	LogLevel string            `yaml:"log_level"`
	Dimmer   dimmer.Config     `yaml:"dimmer"`
	Capture  capture.Config    `yaml:"capture"`
	Pose     PoseConfig        `yaml:"pose"`
	Targets  []target.Spec     `yaml:"targets"`
	Active   string            `yaml:"active"` // target selected at startup, empty for paused
	Sink     SinkConfig        `yaml:"sink"`
	Web      WebConfig         `yaml:"web"`
	Preview  web.PreviewConfig `yaml:"preview"`
}

// Default returns the built-in demo scene.
func Default() File {
	return File{
		LogLevel: "info",
		Dimmer:   dimmer.DefaultConfig(),
		Capture:  capture.DefaultConfig(),
		Pose: PoseConfig{
			Camera: PoseSpec{Rotation: [4]float64{1, 0, 0, 0}},
			Viewer: PoseSpec{Rotation: [4]float64{1, 0, 0, 0}},
		},
		Targets: target.DefaultSpecs(),
		Web:     WebConfig{Port: DefaultPort},
		Preview: web.DefaultPreviewConfig(),
	}
}

// Parse decodes YAML over the defaults, so a file only lists what it changes.
// A targets list in the file replaces the default catalog.
func Parse(data []byte) (File, error) {
	f := Default()
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Load reads path, or fetches it when it is an http(s) URL. An empty path
// returns the defaults.
func Load(ctx context.Context, path string) (File, error) {
	if path == "" {
		return Default(), nil
	}

	var data []byte
	var err error
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		data, err = httpc.Fetch(ctx, nil, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return File{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return Parse(data)
}

// Save writes f as YAML.
func Save(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overlays DIMMER_PORT, DIMMER_LOG_LEVEL and DIMMER_SINK_URL.
func (f *File) ApplyEnv() {
	f.Web.Port = Port(f.Web.Port)
	f.LogLevel = LogLevel(f.LogLevel)
	f.Sink.URL = SinkURL(f.Sink.URL)
}

// Validate checks every section and the target catalog.
func (f *File) Validate() error {
	var problems []string
	for _, e := range f.Dimmer.Validate() {
		problems = append(problems, "dimmer."+e)
	}
	for _, e := range f.Capture.Validate() {
		problems = append(problems, "capture."+e)
	}

	seen := make(map[string]bool)
	for i, t := range f.Targets {
		switch {
		case t.Name == "":
			problems = append(problems, fmt.Sprintf("targets[%d].name is required", i))
		case seen[t.Name]:
			problems = append(problems, fmt.Sprintf("targets[%d].name %q is duplicated", i, t.Name))
		}
		seen[t.Name] = true
		switch t.Sink {
		case "", "material", "websocket":
		default:
			problems = append(problems, fmt.Sprintf("targets[%d].sink must be material or websocket", i))
		}
	}
	if f.Active != "" && !seen[f.Active] {
		problems = append(problems, fmt.Sprintf("active target %q is not in targets", f.Active))
	}
	if f.Sink.HostFrames && f.Sink.URL == "" {
		problems = append(problems, "sink.host_frames needs sink.url")
	}
	if in := f.Pose.Intrinsics; in != nil && !in.Valid() {
		problems = append(problems, "pose.intrinsics focal lengths must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Intrinsics returns the configured intrinsics or an estimate from the
// capture resolution and field of view.
func (f *File) Intrinsics() projection.Intrinsics {
	if f.Pose.Intrinsics != nil {
		return *f.Pose.Intrinsics
	}
	return capture.IntrinsicsFromFOV(f.Capture.Width, f.Capture.Height, f.Capture.HorizontalFOV)
}
