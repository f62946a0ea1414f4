//go:build linux

package v4l2

// DeviceInfo contains information about a V4L2 device.
type DeviceInfo struct {
	DevicePath string
	DeviceName string
	DeviceID   string // Stable identifier (from /dev/v4l/by-id/ or synthetic)
	Caps       uint32
}

// FormatInfo contains information about a supported pixel format.
type FormatInfo struct {
	PixelFormat uint32
	FormatName  string
	Emulated    bool
}

// Resolution represents a supported video resolution.
type Resolution struct {
	Width  uint32
	Height uint32
}

// Framerate represents a supported framerate as a fraction.
type Framerate struct {
	Numerator   uint32
	Denominator uint32
}

// FPS returns the framerate as frames per second.
func (f Framerate) FPS() float64 {
	if f.Numerator == 0 {
		return 0
	}
	return float64(f.Denominator) / float64(f.Numerator)
}

// ControlInfo describes a camera control and its value range.
type ControlInfo struct {
	ID       uint32
	Name     string
	Type     uint32
	Min      int32
	Max      int32
	Step     int32
	Default  int32
	Disabled bool
}

// Capability flags.
const (
	V4L2_CAP_VIDEO_CAPTURE = 0x00000001
	V4L2_CAP_STREAMING     = 0x04000000
	V4L2_CAP_DEVICE_CAPS   = 0x80000000
)

// Format flags.
const (
	V4L2_FMT_FLAG_EMULATED = 0x0002
)

// Common pixel formats.
const (
	V4L2_PIX_FMT_YUYV  = 0x56595559 // 'YUYV'
	V4L2_PIX_FMT_RGB24 = 0x33424752 // 'RGB3'
	V4L2_PIX_FMT_MJPEG = 0x47504A4D // 'MJPG'
	V4L2_PIX_FMT_H264  = 0x34363248 // 'H264'
	V4L2_PIX_FMT_NV12  = 0x3231564E // 'NV12'
)

// Frame size types.
const (
	V4L2_FRMSIZE_TYPE_DISCRETE   = 1
	V4L2_FRMSIZE_TYPE_CONTINUOUS = 2
	V4L2_FRMSIZE_TYPE_STEPWISE   = 3
)

// Frame interval types.
const (
	V4L2_FRMIVAL_TYPE_DISCRETE   = 1
	V4L2_FRMIVAL_TYPE_CONTINUOUS = 2
	V4L2_FRMIVAL_TYPE_STEPWISE   = 3
)

// Buffer and memory types.
const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_MEMORY_MMAP            = 1
	V4L2_FIELD_NONE             = 1
)

// Control types.
const (
	V4L2_CTRL_TYPE_INTEGER = 1
	V4L2_CTRL_TYPE_BOOLEAN = 2
	V4L2_CTRL_TYPE_MENU    = 3
)

// Control flags.
const (
	V4L2_CTRL_FLAG_DISABLED = 0x0001
)
