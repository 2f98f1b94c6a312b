// Package webcam reads frames from a local camera through OpenCV and feeds
// them into a capture.Source.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/teslashibe/go-dimmer/pkg/capture"
	"github.com/teslashibe/go-dimmer/pkg/frame"
	"gocv.io/x/gocv"
)

// ErrReadFailed means the device stopped delivering frames.
var ErrReadFailed = errors.New("webcam: read failed")

// maxReadFailures before the device is considered lost and reopened
const maxReadFailures = 30

// Device owns an OpenCV VideoCapture.
type Device struct {
	config  capture.Config
	source  *capture.Source
	logger  *slog.Logger
	onStart func(width, height int)
}

// New creates a device that publishes into source.
func New(cfg capture.Config, source *capture.Source, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{config: cfg, source: source, logger: logger.With("device", cfg.DeviceID)}
}

// OnStart registers fn to receive the negotiated frame size each time the
// device opens. Call before Run.
func (d *Device) OnStart(fn func(width, height int)) {
	d.onStart = fn
}

func (d *Device) open() (*gocv.VideoCapture, error) {
	vc, err := gocv.OpenVideoCapture(d.config.DeviceID)
	if err != nil {
		return nil, err
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("webcam: device %d not opened", d.config.DeviceID)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.config.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.config.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(d.config.Framerate))
	return vc, nil
}

// Run waits for the device, streams frames until it is lost, then waits
// again. Returns when ctx is cancelled.
func (d *Device) Run(ctx context.Context) error {
	defer d.source.SetActive(false)

	for {
		vc, err := capture.WaitForDevice(ctx, d.config.PollInterval, d.logger, d.open)
		if err != nil {
			return nil
		}

		width := int(vc.Get(gocv.VideoCaptureFrameWidth))
		height := int(vc.Get(gocv.VideoCaptureFrameHeight))
		d.logger.Info("camera started",
			"width", width,
			"height", height,
			"fps", vc.Get(gocv.VideoCaptureFPS))
		if d.onStart != nil && width > 0 && height > 0 {
			d.onStart(width, height)
		}
		d.source.SetActive(true)

		err = d.stream(ctx, vc)
		vc.Close()
		d.source.SetActive(false)

		if ctx.Err() != nil {
			return nil
		}
		d.logger.Warn("camera lost, waiting for device", "error", err)
	}
}

func (d *Device) stream(ctx context.Context, vc *gocv.VideoCapture) error {
	bgr := gocv.NewMat()
	defer bgr.Close()
	rgba := gocv.NewMat()
	defer rgba.Close()

	failures := 0
	for ctx.Err() == nil {
		if ok := vc.Read(&bgr); !ok || bgr.Empty() {
			failures++
			if failures >= maxReadFailures {
				return ErrReadFailed
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		failures = 0

		ts := time.Now()
		plane, err := MatToPlane(bgr, &rgba)
		if err != nil {
			d.logger.Debug("frame conversion failed", "error", err)
			continue
		}
		if err := d.source.PublishPlane(plane, ts, nil); err != nil {
			d.logger.Debug("frame rejected", "error", err)
		}
	}
	return ctx.Err()
}

// MatToPlane converts a BGR Mat into an RGBA plane using dst as scratch. The
// plane aliases a copy of dst's bytes, so dst may be reused afterwards.
func MatToPlane(bgr gocv.Mat, dst *gocv.Mat) (frame.Plane, error) {
	if bgr.Empty() {
		return frame.Plane{}, frame.ErrEmptyPlane
	}
	switch bgr.Channels() {
	case 4:
		gocv.CvtColor(bgr, dst, gocv.ColorBGRAToRGBA)
	case 1:
		gocv.CvtColor(bgr, dst, gocv.ColorGrayToBGRA)
	default:
		gocv.CvtColor(bgr, dst, gocv.ColorBGRToRGBA)
	}
	return frame.Plane{
		Width:       dst.Cols(),
		Height:      dst.Rows(),
		Stride:      dst.Step(),
		PixelStride: frame.BytesPerPixel,
		Data:        dst.ToBytes(),
	}, nil
}

// ReadImage loads an image file into a dense RGBA image.
func ReadImage(path string, flipVertical bool) (*image.RGBA, error) {
	bgr := gocv.IMRead(path, gocv.IMReadColor)
	defer bgr.Close()
	if bgr.Empty() {
		return nil, fmt.Errorf("webcam: cannot read image %s", path)
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	plane, err := MatToPlane(bgr, &rgba)
	if err != nil {
		return nil, err
	}
	return frame.Normalize(plane, frame.NormalizeOptions{FlipVertical: flipVertical}, nil)
}

// DecodeImage decodes a compressed image (JPEG, PNG) into an RGBA plane.
func DecodeImage(data []byte) (frame.Plane, error) {
	bgr, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return frame.Plane{}, fmt.Errorf("webcam: decode: %w", err)
	}
	defer bgr.Close()
	if bgr.Empty() {
		return frame.Plane{}, fmt.Errorf("webcam: decode: %w", frame.ErrEmptyPlane)
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	return MatToPlane(bgr, &rgba)
}
