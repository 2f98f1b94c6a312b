package web

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/teslashibe/go-dimmer/pkg/dimmer"
	"github.com/teslashibe/go-dimmer/pkg/hub"
	"golang.org/x/image/draw"
)

// PreviewConfig controls the camera preview stream.
type PreviewConfig struct {
	// Width of the thumbnail, height follows aspect
	Width int `json:"width" yaml:"width"`
	// MinGap limits the stream to one preview per gap
	MinGap   time.Duration `json:"min_gap" yaml:"min_gap"`
	Quality  int           `json:"quality" yaml:"quality"`
	Disabled bool          `json:"disabled" yaml:"disabled"`
}

// DefaultPreviewConfig is 320px wide, 5 fps, quality 70.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{Width: 320, MinGap: 200 * time.Millisecond, Quality: 70}
}

var rectColor = color.RGBA{R: 255, G: 64, B: 0, A: 255}

type previewJob struct {
	img  *image.RGBA
	rect image.Rectangle
}

// Preview turns applied dimmer samples into JPEG thumbnails with the sampled
// rectangle outlined, and broadcasts them on its own hub.
type Preview struct {
	config PreviewConfig
	hub    *hub.Hub
	jobs   chan previewJob
	logger *slog.Logger

	mu   sync.Mutex
	last time.Time
}

// NewPreview creates a preview stream.
func NewPreview(cfg PreviewConfig, logger *slog.Logger) *Preview {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultPreviewConfig().Width
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultPreviewConfig().Quality
	}
	l := logger.With("component", "preview")
	return &Preview{
		config: cfg,
		hub:    hub.New("camera", l),
		jobs:   make(chan previewJob, 1),
		logger: l,
	}
}

// Hub returns the camera hub.
func (p *Preview) Hub() *hub.Hub {
	return p.hub
}

// Observe is a dimmer.SampleObserver. It runs inside the controller cycle so
// it only scales the staged frame; encoding happens on the Run goroutine.
func (p *Preview) Observe(s dimmer.Sample) {
	if p.config.Disabled || s.Frame == nil || p.hub.ClientCount() == 0 {
		return
	}

	p.mu.Lock()
	if !p.last.IsZero() && s.At.Sub(p.last) < p.config.MinGap {
		p.mu.Unlock()
		return
	}
	p.last = s.At
	p.mu.Unlock()

	img, rect := Thumbnail(s.Frame, s.Rect, p.config.Width)
	select {
	case p.jobs <- previewJob{img: img, rect: rect}:
	default:
		// encoder busy, drop
	}
}

// Run encodes and broadcasts previews until ctx is cancelled.
func (p *Preview) Run(ctx context.Context) {
	go p.hub.Run(ctx)

	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			DrawRect(job.img, job.rect, rectColor)
			buf.Reset()
			if err := jpeg.Encode(&buf, job.img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
				p.logger.Debug("preview encode failed", "error", err)
				continue
			}
			p.hub.BroadcastBinary(append([]byte(nil), buf.Bytes()...))
		}
	}
}

// Thumbnail scales src to width (keeping aspect) with bilinear filtering and
// maps the sampled rectangle into thumbnail pixels.
func Thumbnail(src *image.RGBA, sampled r2.Rect, width int) (*image.RGBA, image.Rectangle) {
	sb := src.Bounds()
	if width <= 0 || width > sb.Dx() {
		width = sb.Dx()
	}
	height := sb.Dy() * width / sb.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)

	if sampled.IsEmpty() {
		return dst, image.Rectangle{}
	}
	sx := float64(width) / float64(sb.Dx())
	sy := float64(height) / float64(sb.Dy())
	rect := image.Rect(
		int((sampled.X.Lo-float64(sb.Min.X))*sx),
		int((sampled.Y.Lo-float64(sb.Min.Y))*sy),
		int((sampled.X.Hi-float64(sb.Min.X))*sx),
		int((sampled.Y.Hi-float64(sb.Min.Y))*sy),
	)
	return dst, rect
}

// DrawRect outlines r on img. Points outside img are ignored.
func DrawRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() || !r.Overlaps(img.Bounds()) {
		return
	}
	visible := r.Intersect(img.Bounds())
	for x := visible.Min.X; x < visible.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := visible.Min.Y; y < visible.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
