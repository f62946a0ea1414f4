package api

import "github.com/capnode/capnode/internal/logging"

// HealthData is the health check payload.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Message string `json:"message" example:"API is healthy" doc:"Status detail"`
}

// HealthResponse wraps the health payload.
type HealthResponse struct {
	Body HealthData
}

// VersionData is the build information payload.
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Release version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-08-01T12:00:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

// VersionResponse wraps the version payload.
type VersionResponse struct {
	Body VersionData
}

// FormatData is one capture mode of a device.
type FormatData struct {
	FormatID   uint32    `json:"format_id" example:"0" doc:"Format ordinal within the device"`
	Width      uint32    `json:"width" example:"1280" doc:"Frame width in pixels"`
	Height     uint32    `json:"height" example:"720" doc:"Frame height in pixels"`
	FourCC     string    `json:"fourcc" example:"YUYV" doc:"Pixel encoding as four characters"`
	Framerates []float64 `json:"framerates,omitempty" example:"[30]" doc:"Supported frame rates in frames per second"`
}

// DeviceData is one enumerated capture device.
type DeviceData struct {
	DeviceID uint32       `json:"device_id" example:"0" doc:"Device ordinal, stable for this process"`
	Name     string       `json:"name" example:"HD Webcam" doc:"Device name"`
	StableID string       `json:"stable_id,omitempty" example:"usb-0000:00:14.0-1-video-index0" doc:"Stable hardware identifier"`
	Formats  []FormatData `json:"formats" doc:"Supported capture modes"`
}

// DeviceListData is the device listing payload.
type DeviceListData struct {
	Devices []DeviceData `json:"devices" doc:"All devices enumerated at startup"`
	Count   int          `json:"count" example:"1" doc:"Number of devices"`
}

// DeviceListResponse wraps the device listing.
type DeviceListResponse struct {
	Body DeviceListData
}

// StreamOpenBody selects the device and capture mode to open.
type StreamOpenBody struct {
	DeviceID uint32 `json:"device_id" example:"0" doc:"Device ordinal"`
	FormatID uint32 `json:"format_id" example:"1" doc:"Format ordinal within the device"`
}

// StreamOpenInput wraps the open request body.
type StreamOpenInput struct {
	Body StreamOpenBody
}

// StreamData describes an open stream.
type StreamData struct {
	Handle     int32  `json:"handle" example:"0" doc:"Stream handle"`
	Device     string `json:"device" example:"HD Webcam" doc:"Device name"`
	Width      uint32 `json:"width" example:"1280" doc:"Frame width in pixels"`
	Height     uint32 `json:"height" example:"720" doc:"Frame height in pixels"`
	FourCC     string `json:"fourcc" example:"YUYV" doc:"Negotiated pixel encoding"`
	Open       bool   `json:"open" example:"true" doc:"Whether the stream is capturing"`
	FrameCount uint32 `json:"frame_count" example:"42" doc:"Frames delivered so far"`
	NewFrame   bool   `json:"new_frame" example:"true" doc:"Whether an undelivered frame is pending"`
}

// StreamResponse wraps a stream description.
type StreamResponse struct {
	Body StreamData
}

// StreamHandleInput identifies a stream by handle.
type StreamHandleInput struct {
	Handle int32 `path:"handle" example:"0" doc:"Stream handle"`
}

// PropertyLimitsData is the current value and accepted range of a
// stream property.
type PropertyLimitsData struct {
	Property string `json:"property" example:"exposure" doc:"Property name"`
	Value    int32  `json:"value" example:"-5" doc:"Current value"`
	Min      int32  `json:"min" example:"-11" doc:"Minimum accepted value"`
	Max      int32  `json:"max" example:"1" doc:"Maximum accepted value"`
}

// PropertyLimitsResponse wraps the property limits payload.
type PropertyLimitsResponse struct {
	Body PropertyLimitsData
}

// PropertySetBody sets a property to a manual value.
type PropertySetBody struct {
	Value int32 `json:"value" example:"-5" doc:"Manual property value"`
}

// PropertyAutoBody toggles automatic control of a property.
type PropertyAutoBody struct {
	Enabled bool `json:"enabled" example:"true" doc:"Enable automatic control"`
}

// FrameResponse carries one frame encoded as JPEG.
type FrameResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// LogsData is the recent log entries payload.
type LogsData struct {
	Entries []logging.LogEntry `json:"entries" doc:"Buffered log entries, oldest first"`
	Count   int                `json:"count" example:"12" doc:"Number of entries"`
}

// LogsResponse wraps the log entries payload.
type LogsResponse struct {
	Body LogsData
}
