package events

// Event type constants for kelindar/event.
const (
	TypeDeviceDiscovery uint32 = iota + 1
	TypeStreamOpened
	TypeStreamClosed
	TypeCaptureError
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DeviceDiscoveryEvent is published once after startup enumeration completes.
type DeviceDiscoveryEvent struct {
	DeviceCount int    `json:"device_count" example:"2" doc:"Number of devices found"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceDiscoveryEvent.
func (e DeviceDiscoveryEvent) Type() uint32 { return TypeDeviceDiscovery }

// StreamOpenedEvent is published when a stream is opened and capturing.
type StreamOpenedEvent struct {
	Handle     int32  `json:"handle" example:"0" doc:"Stream handle"`
	DeviceName string `json:"device_name" example:"HD Webcam" doc:"Device the stream was opened on"`
	Width      uint32 `json:"width" example:"1280" doc:"Negotiated frame width"`
	Height     uint32 `json:"height" example:"720" doc:"Negotiated frame height"`
	FourCC     string `json:"fourcc" example:"YUYV" doc:"Negotiated pixel format"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamOpenedEvent.
func (e StreamOpenedEvent) Type() uint32 { return TypeStreamOpened }

// StreamClosedEvent is published when a stream is closed and its
// capture producer has fully stopped.
type StreamClosedEvent struct {
	Handle    int32  `json:"handle" example:"0" doc:"Stream handle"`
	Reason    string `json:"reason" example:"closed" doc:"Why the stream went away: closed, shutdown"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamClosedEvent.
func (e StreamClosedEvent) Type() uint32 { return TypeStreamClosed }

// CaptureErrorEvent is published when a backend capture failure kills
// a source's producer.
type CaptureErrorEvent struct {
	Device    string `json:"device" example:"HD Webcam" doc:"Device the failure occurred on"`
	Message   string `json:"message" example:"device lost" doc:"Failure description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }
