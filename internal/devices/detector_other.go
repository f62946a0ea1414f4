//go:build !linux

package devices

import (
	"github.com/capnode/capnode/internal/capture"
)

// Mock devices for development on platforms without a capture backend.
// They enumerate normally but cannot be opened.
var mockDevices = []capture.DeviceDescriptor{
	{
		Name:     "Mock USB Webcam HD",
		Path:     "/dev/video0",
		StableID: "usb-mock-webcam-001",
		Formats: []capture.FormatDescriptor{
			{Width: 640, Height: 480, FourCC: capture.MakeFourCC("YUYV"), Framerates: []float64{15, 30, 60}},
			{Width: 1280, Height: 720, FourCC: capture.MakeFourCC("YUYV"), Framerates: []float64{15, 30}},
			{Width: 1920, Height: 1080, FourCC: capture.MakeFourCC("MJPG"), Framerates: []float64{30, 60}},
		},
	},
	{
		Name:     "Mock HDMI Capture Device",
		Path:     "/dev/video1",
		StableID: "usb-mock-hdmi-capture",
		Formats: []capture.FormatDescriptor{
			{Width: 1920, Height: 1080, FourCC: capture.MakeFourCC("YUYV"), Framerates: []float64{30, 60}},
		},
	},
}

type mockDetector struct{}

func newDetector() Detector {
	return &mockDetector{}
}

func (d *mockDetector) Enumerate() ([]capture.DeviceDescriptor, error) {
	descriptors := make([]capture.DeviceDescriptor, len(mockDevices))
	copy(descriptors, mockDevices)
	return descriptors, nil
}
