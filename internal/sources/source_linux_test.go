//go:build linux

package sources

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"syscall"
	"testing"
	"time"

	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/events"
	"github.com/capnode/capnode/internal/logging"
)

func TestPropertyCIDCoversAllProperties(t *testing.T) {
	properties := []capture.PropertyID{
		capture.PropExposure,
		capture.PropFocus,
		capture.PropZoom,
		capture.PropWhiteBalance,
		capture.PropGain,
		capture.PropBrightness,
		capture.PropContrast,
		capture.PropSaturation,
		capture.PropGamma,
		capture.PropHue,
		capture.PropSharpness,
		capture.PropBacklightComp,
		capture.PropPowerLineFreq,
	}

	for _, id := range properties {
		if _, ok := propertyCID[id]; !ok {
			t.Errorf("property %s has no V4L2 control mapping", id)
		}
	}
}

func TestAutoCIDOnlyForAutoCapableProperties(t *testing.T) {
	autoCapable := map[capture.PropertyID]bool{
		capture.PropExposure:     true,
		capture.PropFocus:        true,
		capture.PropWhiteBalance: true,
		capture.PropGain:         true,
	}

	for id := range autoCID {
		if !autoCapable[id] {
			t.Errorf("property %s should not have an auto control", id)
		}
	}
	for id := range autoCapable {
		if _, ok := autoCID[id]; !ok {
			t.Errorf("property %s is missing its auto control", id)
		}
	}
}

func TestFailPublishesCaptureErrorEvent(t *testing.T) {
	bus := events.New()
	received := make(chan events.CaptureErrorEvent, 1)
	unsub := bus.Subscribe(func(e events.CaptureErrorEvent) {
		received <- e
	})
	defer unsub()

	src := &v4l2Source{
		device: "Camera0",
		bus:    bus,
		logger: logging.GetLogger("sources"),
	}
	src.fail("device lost", syscall.ENODEV)

	if src.IsOpen() {
		t.Error("IsOpen = true after fail")
	}

	select {
	case ev := <-received:
		if ev.Device != "Camera0" {
			t.Errorf("event device = %q, want %q", ev.Device, "Camera0")
		}
		if ev.Message != "device lost" {
			t.Errorf("event message = %q, want %q", ev.Message, "device lost")
		}
	case <-time.After(time.Second):
		t.Fatal("no capture error event published")
	}
}

func TestFailWithoutBusIsSafe(t *testing.T) {
	src := &v4l2Source{
		device: "Camera0",
		logger: logging.GetLogger("sources"),
	}
	src.fail("wait failed", errors.New("interrupted"))

	if src.IsOpen() {
		t.Error("IsOpen = true after fail")
	}
}

func TestDecodeJPEGToRGB24(t *testing.T) {
	const w, h = 8, 4

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			src.Pix[i] = 200
			src.Pix[i+1] = 100
			src.Pix[i+2] = 50
			src.Pix[i+3] = 255
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}

	dst := make([]byte, w*h*3)
	if err := decodeJPEGToRGB24(dst, buf.Bytes(), w, h); err != nil {
		t.Fatalf("decodeJPEGToRGB24 failed: %v", err)
	}

	// Lossy encode; check the first pixel is in the right neighborhood.
	if diff(dst[0], 200) > 16 || diff(dst[1], 100) > 16 || diff(dst[2], 50) > 16 {
		t.Errorf("first pixel = (%d,%d,%d), want around (200,100,50)", dst[0], dst[1], dst[2])
	}
}

func TestDecodeJPEGToRGB24_SizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}

	dst := make([]byte, 8*8*3)
	if err := decodeJPEGToRGB24(dst, buf.Bytes(), 8, 8); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestDecodeJPEGToRGB24_Garbage(t *testing.T) {
	dst := make([]byte, 4*4*3)
	if err := decodeJPEGToRGB24(dst, []byte("not a jpeg"), 4, 4); err == nil {
		t.Fatal("expected decode error")
	}
}

func diff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
