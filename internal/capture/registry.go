package capture

import (
	"log/slog"
)

// FormatDescriptor is one capture mode offered by a device. Immutable
// once enumerated. Framerates is informational; the backend picks the
// rate when the mode is opened.
type FormatDescriptor struct {
	Width      uint32
	Height     uint32
	FourCC     FourCC
	Framerates []float64
}

// DeviceDescriptor is one enumerated capture device. The ordinal
// position in the registry is the device ID, stable only within one
// process lifetime. Path and StableID are backend-supplied locators.
type DeviceDescriptor struct {
	Name     string
	Path     string
	StableID string
	Formats  []FormatDescriptor
}

// Registry holds the devices enumerated at startup. It is populated
// once, read-only afterwards, and needs no synchronization.
type Registry struct {
	devices []*DeviceDescriptor
	logger  *slog.Logger
}

// NewRegistry builds a registry from enumerated descriptors.
func NewRegistry(devs []DeviceDescriptor, logger *slog.Logger) *Registry {
	r := &Registry{
		devices: make([]*DeviceDescriptor, len(devs)),
		logger:  logger,
	}
	for i := range devs {
		d := devs[i]
		r.devices[i] = &d
	}
	return r
}

// Count returns the number of enumerated devices.
func (r *Registry) Count() uint32 {
	return uint32(len(r.devices))
}

// Name returns the UTF-8 device name, or ok=false if the device does
// not exist.
func (r *Registry) Name(deviceID uint32) (string, bool) {
	dev := r.device(deviceID)
	if dev == nil {
		return "", false
	}
	return dev.Name, true
}

// StableID returns the backend-supplied stable identifier, or ok=false
// if the device does not exist.
func (r *Registry) StableID(deviceID uint32) (string, bool) {
	dev := r.device(deviceID)
	if dev == nil {
		return "", false
	}
	return dev.StableID, true
}

// FormatCount returns the number of capture modes the device offers,
// or ok=false if the device does not exist.
func (r *Registry) FormatCount(deviceID uint32) (int, bool) {
	dev := r.device(deviceID)
	if dev == nil {
		return 0, false
	}
	return len(dev.Formats), true
}

// FormatInfo returns one capture mode of a device, or ok=false if
// either ordinal is out of range.
func (r *Registry) FormatInfo(deviceID, formatID uint32) (FormatDescriptor, bool) {
	dev := r.device(deviceID)
	if dev == nil {
		return FormatDescriptor{}, false
	}
	if formatID >= uint32(len(dev.Formats)) {
		r.logger.Error("invalid format ID", "device_id", deviceID, "format_id", formatID, "format_count", len(dev.Formats))
		return FormatDescriptor{}, false
	}
	return dev.Formats[formatID], true
}

// device resolves a device ordinal. Out-of-range IDs and absent
// descriptors collapse into the same nil result for callers; the log
// line distinguishes the cause.
func (r *Registry) device(deviceID uint32) *DeviceDescriptor {
	if deviceID >= uint32(len(r.devices)) {
		r.logger.Error("device not found", "device_id", deviceID, "device_count", len(r.devices))
		return nil
	}
	if r.devices[deviceID] == nil {
		r.logger.Error("device descriptor is absent", "device_id", deviceID)
		return nil
	}
	return r.devices[deviceID]
}
