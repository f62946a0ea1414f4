//go:build linux

package devices

import (
	"log/slog"

	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/logging"
	"github.com/capnode/capnode/pkg/linuxav/v4l2"
)

type linuxDetector struct {
	logger *slog.Logger
}

func newDetector() Detector {
	return &linuxDetector{
		logger: logging.GetLogger("devices"),
	}
}

// Enumerate lists V4L2 capture devices with their formats expanded to
// one descriptor per format/resolution pair. Devices whose format
// query fails are listed with an empty format list rather than
// dropped, so device ordinals stay aligned with what the kernel
// reports.
func (d *linuxDetector) Enumerate() ([]capture.DeviceDescriptor, error) {
	v4l2Devices, err := v4l2.FindDevices()
	if err != nil {
		return nil, err
	}

	descriptors := make([]capture.DeviceDescriptor, 0, len(v4l2Devices))
	for _, dev := range v4l2Devices {
		descriptor := capture.DeviceDescriptor{
			Name:     dev.DeviceName,
			Path:     dev.DevicePath,
			StableID: dev.DeviceID,
		}

		formats, err := v4l2.GetFormats(dev.DevicePath)
		if err != nil {
			d.logger.Warn("failed to query formats", "path", dev.DevicePath, "error", err)
			descriptors = append(descriptors, descriptor)
			continue
		}

		for _, format := range formats {
			resolutions, err := v4l2.GetResolutions(dev.DevicePath, format.PixelFormat)
			if err != nil {
				d.logger.Warn("failed to query resolutions",
					"path", dev.DevicePath, "format", v4l2.FormatFourCC(format.PixelFormat), "error", err)
				continue
			}
			for _, res := range resolutions {
				fd := capture.FormatDescriptor{
					Width:  res.Width,
					Height: res.Height,
					FourCC: capture.FourCC(format.PixelFormat),
				}
				rates, err := v4l2.GetFramerates(dev.DevicePath, format.PixelFormat, res.Width, res.Height)
				if err != nil {
					d.logger.Debug("failed to query framerates",
						"path", dev.DevicePath, "format", v4l2.FormatFourCC(format.PixelFormat),
						"width", res.Width, "height", res.Height, "error", err)
				}
				for _, rate := range rates {
					fd.Framerates = append(fd.Framerates, rate.FPS())
				}
				descriptor.Formats = append(descriptor.Formats, fd)
			}
		}

		d.logger.Debug("enumerated device",
			"path", dev.DevicePath, "name", dev.DeviceName, "formats", len(descriptor.Formats))
		descriptors = append(descriptors, descriptor)
	}

	return descriptors, nil
}
