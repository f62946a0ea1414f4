//go:build !linux

package sources

import (
	"log/slog"

	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/events"
	"github.com/capnode/capnode/internal/logging"
	"github.com/capnode/capnode/internal/metrics"
)

// stubSource is the backend for platforms without capture support.
// Open always fails; everything else reads as an empty closed source.
type stubSource struct {
	logger *slog.Logger
}

func newSource(_ *metrics.Capture, _ *events.Bus) capture.Source {
	return &stubSource{logger: logging.GetLogger("sources")}
}

func (s *stubSource) Open(dev *capture.DeviceDescriptor, width, height uint32, fourcc capture.FourCC) bool {
	s.logger.Error("capture not supported on this platform",
		"device", dev.Name, "width", width, "height", height, "fourcc", fourcc.String())
	return false
}

func (s *stubSource) IsOpen() bool                                          { return false }
func (s *stubSource) CaptureFrame([]byte) bool                              { return false }
func (s *stubSource) HasNewFrame() bool                                     { return false }
func (s *stubSource) FrameCount() uint32                                    { return 0 }
func (s *stubSource) PropertyLimits(capture.PropertyID) (int32, int32, bool) { return 0, 0, false }
func (s *stubSource) Property(capture.PropertyID) (int32, bool)             { return 0, false }
func (s *stubSource) SetProperty(capture.PropertyID, int32) bool            { return false }
func (s *stubSource) SetAutoProperty(capture.PropertyID, bool) bool         { return false }
func (s *stubSource) FourCC() capture.FourCC                                { return 0 }
func (s *stubSource) Close()                                                {}
