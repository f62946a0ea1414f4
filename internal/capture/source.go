package capture

// PropertyID identifies a controllable capture parameter.
type PropertyID int

// Capture properties. Backends report which of these they support;
// unsupported properties fail per call without affecting the stream.
const (
	PropExposure PropertyID = iota + 1
	PropFocus
	PropZoom
	PropWhiteBalance
	PropGain
	PropBrightness
	PropContrast
	PropSaturation
	PropGamma
	PropHue
	PropSharpness
	PropBacklightComp
	PropPowerLineFreq
)

// String returns a short lowercase name for logging.
func (p PropertyID) String() string {
	switch p {
	case PropExposure:
		return "exposure"
	case PropFocus:
		return "focus"
	case PropZoom:
		return "zoom"
	case PropWhiteBalance:
		return "whitebalance"
	case PropGain:
		return "gain"
	case PropBrightness:
		return "brightness"
	case PropContrast:
		return "contrast"
	case PropSaturation:
		return "saturation"
	case PropGamma:
		return "gamma"
	case PropHue:
		return "hue"
	case PropSharpness:
		return "sharpness"
	case PropBacklightComp:
		return "backlightcomp"
	case PropPowerLineFreq:
		return "powerlinefreq"
	default:
		return "unknown"
	}
}

// Source is the capability contract a platform capture backend must
// satisfy. One concrete implementation exists per platform; the core
// never inspects backend-internal state.
//
// A Source is single-owner: the stream table holds it from a successful
// Open until Close. Close must synchronously stop the backend's frame
// producer and release its buffers before returning; after Close no
// further writes to the published frame may occur.
type Source interface {
	// Open starts capturing from dev at the given mode. Returns false
	// if the backend cannot open the device; the Source is then dead
	// and must not be reused.
	Open(dev *DeviceDescriptor, width, height uint32, fourcc FourCC) bool

	// IsOpen reports whether the source is open and capturing. A source
	// that lost its device reads as closed but remains closeable.
	IsOpen() bool

	// CaptureFrame copies the most recent complete RGB frame into dst.
	// Fails if dst is smaller than width*height*3 or no undelivered
	// frame is pending. A successful call increments the frame counter
	// by exactly one and clears the new-frame flag.
	CaptureFrame(dst []byte) bool

	// HasNewFrame reports whether a frame arrived since the last
	// successful CaptureFrame. Purely observational.
	HasNewFrame() bool

	// FrameCount returns the lifetime count of delivered frames.
	FrameCount() uint32

	// PropertyLimits returns the backend-reported [min,max] range for a
	// property, or ok=false if the property is unsupported.
	PropertyLimits(id PropertyID) (min, max int32, ok bool)

	// Property returns the current value of a property, or ok=false if
	// the property is unsupported.
	Property(id PropertyID) (value int32, ok bool)

	// SetProperty sets a property to a manual value.
	SetProperty(id PropertyID, value int32) bool

	// SetAutoProperty enables or disables automatic control of a property.
	SetAutoProperty(id PropertyID, enable bool) bool

	// FourCC returns the negotiated pixel encoding.
	FourCC() FourCC

	// Close stops the capture producer and releases backend resources.
	// Safe to call on a source that already lost its device.
	Close()
}

// EnumerateFunc yields the ordered list of capture devices present on
// the system. It is called exactly once, at Context construction;
// devices appearing later are not visible.
type EnumerateFunc func() ([]DeviceDescriptor, error)

// SourceFactory creates an unopened platform Source.
type SourceFactory func() Source
