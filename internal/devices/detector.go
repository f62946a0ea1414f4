// Package devices discovers capture hardware and describes it as
// device descriptors consumed by the capture registry. Detection is
// platform-specific; non-Linux builds see a fixed set of mock devices
// for development.
package devices

import (
	"github.com/capnode/capnode/internal/capture"
)

// Detector enumerates capture devices with their supported formats.
type Detector interface {
	// Enumerate returns all capture devices present right now, each with
	// its full format list. Order is stable for a given hardware state.
	Enumerate() ([]capture.DeviceDescriptor, error)
}

// NewDetector creates the platform-specific detector.
func NewDetector() Detector {
	return newDetector()
}
