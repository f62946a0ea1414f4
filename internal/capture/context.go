// Package capture implements the device/stream lifecycle manager: the
// registry of enumerated devices and their capture modes, the table
// mapping opaque stream handles to live capture sessions, and the
// open/close/query/property protocol over a platform Source backend.
//
// Every public operation maps failures to a fixed sentinel (false, 0,
// -1 or an ok flag) and never panics across the package boundary; the
// distinguishing cause goes to the log.
package capture

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/capnode/capnode/internal/events"
	"github.com/capnode/capnode/internal/logging"
	"github.com/capnode/capnode/internal/metrics"
)

// InvalidStream is returned by OpenStream when no stream could be
// opened. No handle is allocated for a failed open.
const InvalidStream int32 = -1

// Options configures a Context. Enumerate and NewSource are the two
// narrow interfaces to the platform backend; Bus and Metrics are
// optional.
type Options struct {
	Enumerate EnumerateFunc
	NewSource SourceFactory
	Bus       *events.Bus
	Metrics   *metrics.Capture
}

// Context composes the device registry and the stream table. It is the
// single entry point for device queries and stream lifecycle. Devices
// must be present at construction; there is no re-enumeration.
type Context struct {
	registry  *Registry
	table     *streamTable
	newSource SourceFactory
	bus       *events.Bus
	metrics   *metrics.Capture
	logger    *slog.Logger
}

// New enumerates devices exactly once and returns a ready Context.
// Enumeration failure is the only construction error; an empty device
// list is valid.
func New(opts Options) (*Context, error) {
	if opts.Enumerate == nil || opts.NewSource == nil {
		return nil, fmt.Errorf("capture: Enumerate and NewSource are required")
	}

	logger := logging.GetLogger("capture")

	devs, err := opts.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("device enumeration failed: %w", err)
	}

	c := &Context{
		registry:  NewRegistry(devs, logger),
		table:     newStreamTable(logger),
		newSource: opts.NewSource,
		bus:       opts.Bus,
		metrics:   opts.Metrics,
		logger:    logger,
	}

	logger.Info("devices enumerated", "count", len(devs))
	if c.bus != nil {
		c.bus.Publish(events.DeviceDiscoveryEvent{
			DeviceCount: len(devs),
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c, nil
}

// Registry exposes read-only device lookups.
func (c *Context) Registry() *Registry {
	return c.registry
}

// DeviceCount returns the number of devices found at startup.
func (c *Context) DeviceCount() uint32 {
	return c.registry.Count()
}

// DeviceName returns the device name for an ordinal, or ok=false.
func (c *Context) DeviceName(deviceID uint32) (string, bool) {
	return c.registry.Name(deviceID)
}

// FormatCount returns the number of capture modes a device offers.
func (c *Context) FormatCount(deviceID uint32) (int, bool) {
	return c.registry.FormatCount(deviceID)
}

// FormatInfo returns one capture mode of a device.
func (c *Context) FormatInfo(deviceID, formatID uint32) (FormatDescriptor, bool) {
	return c.registry.FormatInfo(deviceID, formatID)
}

// OpenStream opens a stream to a device at the chosen capture mode and
// returns its handle, or InvalidStream. Capturing starts automatically
// on success; there is no separate start call. A failed open allocates
// no handle, so the next successful open gets the same handle it would
// have gotten had the failure never happened.
func (c *Context) OpenStream(deviceID, formatID uint32) int32 {
	dev := c.registry.device(deviceID)
	if dev == nil {
		return InvalidStream
	}

	format, ok := c.registry.FormatInfo(deviceID, formatID)
	if !ok {
		return InvalidStream
	}

	s := c.newSource()
	if !s.Open(dev, format.Width, format.Height, format.FourCC) {
		c.logger.Error("could not open stream", "device", dev.Name, "width", format.Width, "height", format.Height, "fourcc", format.FourCC.String())
		if c.metrics != nil {
			c.metrics.OpenFailures.Inc()
		}
		return InvalidStream
	}

	handle := c.table.store(s, dev.Name, format)
	c.logger.Debug("stream opened", "handle", handle, "device", dev.Name, "fourcc", s.FourCC().String())

	if c.metrics != nil {
		c.metrics.OpenStreams.Inc()
	}
	if c.bus != nil {
		c.bus.Publish(events.StreamOpenedEvent{
			Handle:     handle,
			DeviceName: dev.Name,
			Width:      format.Width,
			Height:     format.Height,
			FourCC:     s.FourCC().String(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
	}

	return handle
}

// CloseStream removes the stream from the table and destroys it. The
// source's capture producer is fully stopped before the call returns.
// Returns false for a negative, unknown or already closed handle, with
// no effect on other streams.
func (c *Context) CloseStream(handle int32) bool {
	e := c.table.remove(handle)
	if e.src == nil {
		c.logger.Error("no stream to close at handle", "handle", handle)
		return false
	}

	e.src.Close()
	c.logger.Debug("stream closed", "handle", handle)

	if c.metrics != nil {
		c.metrics.OpenStreams.Dec()
	}
	if c.bus != nil {
		c.bus.Publish(events.StreamClosedEvent{
			Handle:    handle,
			Reason:    "closed",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return true
}

// IsOpenStream reports whether the stream at handle is open and
// capturing. False for invalid handles.
func (c *Context) IsOpenStream(handle int32) bool {
	e := c.table.lookup(handle)
	if e.src == nil {
		return false
	}
	return e.src.IsOpen()
}

// CaptureFrame copies the most recent complete RGB frame into dst.
// False for invalid handles, insufficient capacity or no pending frame.
func (c *Context) CaptureFrame(handle int32, dst []byte) bool {
	e := c.table.lookup(handle)
	if e.src == nil {
		return false
	}

	ok := e.src.CaptureFrame(dst)
	if ok && c.metrics != nil {
		c.metrics.FramesDelivered.WithLabelValues(e.device).Inc()
	}
	return ok
}

// HasNewFrame reports whether a frame arrived since the last successful
// CaptureFrame on the stream. Observational only; it never consumes the
// pending frame.
func (c *Context) HasNewFrame(handle int32) bool {
	e := c.table.lookup(handle)
	if e.src == nil {
		return false
	}
	return e.src.HasNewFrame()
}

// StreamMode returns the device name and negotiated capture mode of
// the stream, or ok=false for invalid handles.
func (c *Context) StreamMode(handle int32) (device string, mode FormatDescriptor, ok bool) {
	e := c.table.lookup(handle)
	if e.src == nil {
		return "", FormatDescriptor{}, false
	}
	return e.device, e.mode, true
}

// StreamFrameCount returns the lifetime delivered-frame count of the
// stream, or 0 for invalid handles.
func (c *Context) StreamFrameCount(handle int32) uint32 {
	e := c.table.lookup(handle)
	if e.src == nil {
		return 0
	}
	return e.src.FrameCount()
}

// StreamPropertyLimits returns the backend-reported [min,max] range of
// a property on the stream.
func (c *Context) StreamPropertyLimits(handle int32, id PropertyID) (min, max int32, ok bool) {
	e := c.table.lookup(handle)
	if e.src == nil {
		return 0, 0, false
	}
	return e.src.PropertyLimits(id)
}

// StreamProperty returns the current value of a property on the stream.
func (c *Context) StreamProperty(handle int32, id PropertyID) (value int32, ok bool) {
	e := c.table.lookup(handle)
	if e.src == nil {
		return 0, false
	}
	return e.src.Property(id)
}

// SetStreamProperty sets a property to a manual value.
func (c *Context) SetStreamProperty(handle int32, id PropertyID, value int32) bool {
	e := c.table.lookup(handle)
	if e.src == nil {
		return false
	}
	return e.src.SetProperty(id, value)
}

// SetStreamAutoProperty enables or disables automatic control of a
// property.
func (c *Context) SetStreamAutoProperty(handle int32, id PropertyID, enable bool) bool {
	e := c.table.lookup(handle)
	if e.src == nil {
		return false
	}
	return e.src.SetAutoProperty(id, enable)
}

// OpenStreamCount returns the number of live streams.
func (c *Context) OpenStreamCount() int {
	return c.table.size()
}

// Close destroys every remaining stream, stopping each capture producer
// before its source is dropped, then releases the registry. The context
// must not be used afterwards.
func (c *Context) Close() {
	remaining := c.table.drain()
	for handle, e := range remaining {
		e.src.Close()
		if c.metrics != nil {
			c.metrics.OpenStreams.Dec()
		}
		if c.bus != nil {
			c.bus.Publish(events.StreamClosedEvent{
				Handle:    handle,
				Reason:    "shutdown",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	if len(remaining) > 0 {
		c.logger.Info("closed remaining streams on teardown", "count", len(remaining))
	}
	c.logger.Debug("context destroyed")
}
