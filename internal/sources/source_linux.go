//go:build linux

package sources

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/events"
	"github.com/capnode/capnode/internal/logging"
	"github.com/capnode/capnode/internal/metrics"
	"github.com/capnode/capnode/pkg/linuxav/v4l2"
)

// frameWaitMs bounds how long the producer blocks waiting for a frame
// before rechecking for shutdown.
const frameWaitMs = 500

// propertyCID maps capture properties to V4L2 control IDs.
var propertyCID = map[capture.PropertyID]uint32{
	capture.PropExposure:      v4l2.V4L2_CID_EXPOSURE_ABSOLUTE,
	capture.PropFocus:         v4l2.V4L2_CID_FOCUS_ABSOLUTE,
	capture.PropZoom:          v4l2.V4L2_CID_ZOOM_ABSOLUTE,
	capture.PropWhiteBalance:  v4l2.V4L2_CID_WHITE_BALANCE_TEMPERATURE,
	capture.PropGain:          v4l2.V4L2_CID_GAIN,
	capture.PropBrightness:    v4l2.V4L2_CID_BRIGHTNESS,
	capture.PropContrast:      v4l2.V4L2_CID_CONTRAST,
	capture.PropSaturation:    v4l2.V4L2_CID_SATURATION,
	capture.PropGamma:         v4l2.V4L2_CID_GAMMA,
	capture.PropHue:           v4l2.V4L2_CID_HUE,
	capture.PropSharpness:     v4l2.V4L2_CID_SHARPNESS,
	capture.PropBacklightComp: v4l2.V4L2_CID_BACKLIGHT_COMPENSATION,
	capture.PropPowerLineFreq: v4l2.V4L2_CID_POWER_LINE_FREQUENCY,
}

// autoCID maps properties with an automatic mode to the control that
// toggles it. Exposure is a menu control; the others are booleans.
var autoCID = map[capture.PropertyID]uint32{
	capture.PropExposure:     v4l2.V4L2_CID_EXPOSURE_AUTO,
	capture.PropFocus:        v4l2.V4L2_CID_FOCUS_AUTO,
	capture.PropWhiteBalance: v4l2.V4L2_CID_AUTO_WHITE_BALANCE,
	capture.PropGain:         v4l2.V4L2_CID_AUTOGAIN,
}

type v4l2Source struct {
	cam     *v4l2.Camera
	device  string
	width   uint32
	height  uint32
	fourcc  capture.FourCC
	cell    *capture.FrameCell
	open    atomic.Bool
	lost    atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	metrics *metrics.Capture
	bus     *events.Bus
	logger  *slog.Logger
}

func newSource(m *metrics.Capture, bus *events.Bus) capture.Source {
	return &v4l2Source{
		metrics: m,
		bus:     bus,
		logger:  logging.GetLogger("sources"),
	}
}

// Open negotiates the format on the device and starts the frame
// producer. Only YUYV, RGB24, and MJPG encodings can be converted to
// the RGB24 frames callers receive.
func (s *v4l2Source) Open(dev *capture.DeviceDescriptor, width, height uint32, fourcc capture.FourCC) bool {
	switch uint32(fourcc) {
	case v4l2.V4L2_PIX_FMT_YUYV, v4l2.V4L2_PIX_FMT_RGB24, v4l2.V4L2_PIX_FMT_MJPEG:
	default:
		s.logger.Error("unsupported encoding", "device", dev.Name, "fourcc", fourcc.String())
		return false
	}

	cam, err := v4l2.OpenCamera(dev.Path, width, height, uint32(fourcc))
	if err != nil {
		s.logger.Error("failed to open camera", "device", dev.Name, "path", dev.Path, "error", err)
		return false
	}

	s.cam = cam
	s.device = dev.Name
	s.width = width
	s.height = height
	s.fourcc = fourcc
	s.cell = capture.NewFrameCell(int(width*height*3), s.onDrop)
	s.done = make(chan struct{})
	s.open.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.produce(ctx)

	s.logger.Info("source opened",
		"device", dev.Name, "width", width, "height", height, "fourcc", fourcc.String())
	return true
}

func (s *v4l2Source) onDrop() {
	if s.metrics != nil {
		s.metrics.FramesDropped.WithLabelValues(s.device).Inc()
	}
}

// produce pulls frames from the kernel, converts them to RGB24, and
// publishes them into the cell until cancelled or the device is lost.
func (s *v4l2Source) produce(ctx context.Context) {
	defer close(s.done)

	raw := make([]byte, s.cam.SizeImage())
	rgb := make([]byte, s.width*s.height*3)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ready, err := s.cam.WaitFrame(frameWaitMs)
		if err != nil {
			s.fail("wait failed", err)
			return
		}
		if !ready {
			continue
		}

		n, err := s.cam.ReadFrame(raw)
		if err != nil {
			if isDeviceGone(err) {
				s.fail("device lost", err)
				return
			}
			s.logger.Warn("frame read error", "device", s.device, "error", err)
			if s.metrics != nil {
				s.metrics.CaptureErrors.Inc()
			}
			continue
		}
		if n == 0 {
			continue
		}

		if !s.convert(rgb, raw[:n]) {
			continue
		}
		s.cell.Publish(rgb)
	}
}

// convert turns a raw device frame into RGB24. Returns false when the
// frame cannot be decoded.
func (s *v4l2Source) convert(dst, src []byte) bool {
	switch uint32(s.fourcc) {
	case v4l2.V4L2_PIX_FMT_RGB24:
		if len(src) < len(dst) {
			return false
		}
		copy(dst, src[:len(dst)])
		return true
	case v4l2.V4L2_PIX_FMT_YUYV:
		if len(src) < int(s.width*s.height*2) {
			return false
		}
		v4l2.YUYVToRGB24(dst, src, s.width, s.height)
		return true
	case v4l2.V4L2_PIX_FMT_MJPEG:
		if err := decodeJPEGToRGB24(dst, src, s.width, s.height); err != nil {
			s.logger.Warn("jpeg decode failed", "device", s.device, "error", err)
			if s.metrics != nil {
				s.metrics.CaptureErrors.Inc()
			}
			return false
		}
		return true
	}
	return false
}

// fail marks the source terminally broken. It stays in the stream
// table until the owner closes it.
func (s *v4l2Source) fail(msg string, err error) {
	s.lost.Store(true)
	s.open.Store(false)
	s.logger.Error(msg, "device", s.device, "error", err)
	if s.metrics != nil {
		s.metrics.CaptureErrors.Inc()
	}
	if s.bus != nil {
		s.bus.Publish(events.CaptureErrorEvent{
			Device:    s.device,
			Message:   msg,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (s *v4l2Source) IsOpen() bool {
	return s.open.Load() && !s.lost.Load()
}

func (s *v4l2Source) CaptureFrame(dst []byte) bool {
	if s.cell == nil {
		return false
	}
	return s.cell.Take(dst)
}

func (s *v4l2Source) HasNewFrame() bool {
	if s.cell == nil {
		return false
	}
	return s.cell.Pending()
}

func (s *v4l2Source) FrameCount() uint32 {
	if s.cell == nil {
		return 0
	}
	return s.cell.Delivered()
}

func (s *v4l2Source) PropertyLimits(id capture.PropertyID) (int32, int32, bool) {
	if s.cam == nil {
		return 0, 0, false
	}
	cid, ok := propertyCID[id]
	if !ok {
		return 0, 0, false
	}
	info, err := s.cam.QueryControl(cid)
	if err != nil || info.Disabled {
		return 0, 0, false
	}
	return info.Min, info.Max, true
}

func (s *v4l2Source) Property(id capture.PropertyID) (int32, bool) {
	if s.cam == nil {
		return 0, false
	}
	cid, ok := propertyCID[id]
	if !ok {
		return 0, false
	}
	value, err := s.cam.GetControl(cid)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (s *v4l2Source) SetProperty(id capture.PropertyID, value int32) bool {
	if s.cam == nil {
		return false
	}
	cid, ok := propertyCID[id]
	if !ok {
		return false
	}
	if err := s.cam.SetControl(cid, value); err != nil {
		s.logger.Warn("failed to set control", "device", s.device, "property", id.String(), "error", err)
		return false
	}
	return true
}

func (s *v4l2Source) SetAutoProperty(id capture.PropertyID, enable bool) bool {
	if s.cam == nil {
		return false
	}
	cid, ok := autoCID[id]
	if !ok {
		return false
	}

	var value int32
	if id == capture.PropExposure {
		// Exposure auto is a menu control, not a boolean.
		value = v4l2.V4L2_EXPOSURE_MANUAL
		if enable {
			value = v4l2.V4L2_EXPOSURE_APERTURE_PRIORITY
		}
	} else if enable {
		value = 1
	}

	if err := s.cam.SetControl(cid, value); err != nil {
		s.logger.Warn("failed to set auto control", "device", s.device, "property", id.String(), "error", err)
		return false
	}
	return true
}

func (s *v4l2Source) FourCC() capture.FourCC {
	return s.fourcc
}

// Close stops the producer and releases the camera. Blocks until the
// producer goroutine has exited, so no frame writes can happen after
// Close returns.
func (s *v4l2Source) Close() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	if s.cam != nil {
		if err := s.cam.Close(); err != nil {
			s.logger.Warn("camera close error", "device", s.device, "error", err)
		}
		s.cam = nil
	}
	s.open.Store(false)
}

func isDeviceGone(err error) bool {
	return errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, syscall.ENXIO) ||
		errors.Is(err, syscall.EIO)
}

// decodeJPEGToRGB24 decodes one MJPEG frame and writes tightly packed
// RGB24 into dst. The decoded image must match the negotiated size.
func decodeJPEGToRGB24(dst, src []byte, width, height uint32) error {
	img, err := jpeg.Decode(bytes.NewReader(src))
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	if bounds.Dx() != int(width) || bounds.Dy() != int(height) {
		return errors.New("decoded frame size mismatch")
	}

	di := 0
	switch typed := img.(type) {
	case *image.YCbCr:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := typed.YCbCrAt(x, y)
				r, g, b := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				dst[di] = r
				dst[di+1] = g
				dst[di+2] = b
				di += 3
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				dst[di] = byte(r >> 8)
				dst[di+1] = byte(g >> 8)
				dst[di+2] = byte(b >> 8)
				di += 3
			}
		}
	}
	return nil
}
