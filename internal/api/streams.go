package api

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/capnode/capnode/internal/capture"
)

// propertyNames maps API property names to capture property IDs.
var propertyNames = map[string]capture.PropertyID{
	"exposure":      capture.PropExposure,
	"focus":         capture.PropFocus,
	"zoom":          capture.PropZoom,
	"whitebalance":  capture.PropWhiteBalance,
	"gain":          capture.PropGain,
	"brightness":    capture.PropBrightness,
	"contrast":      capture.PropContrast,
	"saturation":    capture.PropSaturation,
	"gamma":         capture.PropGamma,
	"hue":           capture.PropHue,
	"sharpness":     capture.PropSharpness,
	"backlightcomp": capture.PropBacklightComp,
	"powerlinefreq": capture.PropPowerLineFreq,
}

// registerStreamRoutes registers stream lifecycle endpoints.
func (s *Server) registerStreamRoutes() {
	// Open a stream
	huma.Register(s.api, huma.Operation{
		OperationID: "open-stream",
		Method:      http.MethodPost,
		Path:        "/api/streams",
		Summary:     "Open Stream",
		Description: "Open a capture stream on a device at the chosen mode. Capturing starts immediately.",
		Tags:        []string{"streams"},
		Errors:      []int{401, 422, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *StreamOpenInput) (*StreamResponse, error) {
		handle := s.capture.OpenStream(input.Body.DeviceID, input.Body.FormatID)
		if handle == capture.InvalidStream {
			return nil, huma.Error422UnprocessableEntity("could not open stream")
		}
		return s.streamResponse(handle)
	})

	// Get stream status
	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream",
		Method:      http.MethodGet,
		Path:        "/api/streams/{handle}",
		Summary:     "Get Stream",
		Description: "Get the status of an open stream",
		Tags:        []string{"streams"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *StreamHandleInput) (*StreamResponse, error) {
		return s.streamResponse(input.Handle)
	})

	// Close a stream
	huma.Register(s.api, huma.Operation{
		OperationID: "close-stream",
		Method:      http.MethodDelete,
		Path:        "/api/streams/{handle}",
		Summary:     "Close Stream",
		Description: "Close an open stream. The capture producer is fully stopped before the call returns.",
		Tags:        []string{"streams"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *StreamHandleInput) (*struct{}, error) {
		if !s.capture.CloseStream(input.Handle) {
			return nil, huma.Error404NotFound("no stream at handle")
		}
		return &struct{}{}, nil
	})

	// Grab the latest frame as JPEG
	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream-frame",
		Method:      http.MethodGet,
		Path:        "/api/streams/{handle}/frame",
		Summary:     "Get Frame",
		Description: "Grab the most recent undelivered frame as a JPEG snapshot",
		Tags:        []string{"streams"},
		Errors:      []int{401, 404, 409, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *StreamHandleInput) (*FrameResponse, error) {
		_, mode, ok := s.capture.StreamMode(input.Handle)
		if !ok {
			return nil, huma.Error404NotFound("no stream at handle")
		}

		frame := make([]byte, mode.Width*mode.Height*3)
		if !s.capture.CaptureFrame(input.Handle, frame) {
			return nil, huma.Error409Conflict("no new frame available")
		}

		encoded, err := encodeJPEG(frame, mode.Width, mode.Height)
		if err != nil {
			return nil, huma.Error500InternalServerError("frame encoding failed", err)
		}

		return &FrameResponse{
			ContentType: "image/jpeg",
			Body:        encoded,
		}, nil
	})

	// Property value and limits
	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream-property",
		Method:      http.MethodGet,
		Path:        "/api/streams/{handle}/properties/{property}",
		Summary:     "Get Property",
		Description: "Get the current value and accepted range of a stream property",
		Tags:        []string{"streams"},
		Errors:      []int{401, 404, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		StreamHandleInput
		Property string `path:"property" example:"exposure" doc:"Property name"`
	}) (*PropertyLimitsResponse, error) {
		id, ok := propertyNames[input.Property]
		if !ok {
			return nil, huma.Error422UnprocessableEntity("unknown property")
		}
		min, max, ok := s.capture.StreamPropertyLimits(input.Handle, id)
		if !ok {
			return nil, huma.Error404NotFound("property not supported on this stream")
		}
		value, _ := s.capture.StreamProperty(input.Handle, id)
		return &PropertyLimitsResponse{
			Body: PropertyLimitsData{
				Property: input.Property,
				Value:    value,
				Min:      min,
				Max:      max,
			},
		}, nil
	})

	// Set property to a manual value
	huma.Register(s.api, huma.Operation{
		OperationID: "set-stream-property",
		Method:      http.MethodPut,
		Path:        "/api/streams/{handle}/properties/{property}",
		Summary:     "Set Property",
		Description: "Set a stream property to a manual value",
		Tags:        []string{"streams"},
		Errors:      []int{401, 404, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		StreamHandleInput
		Property string `path:"property" example:"exposure" doc:"Property name"`
		Body     PropertySetBody
	}) (*struct{}, error) {
		id, ok := propertyNames[input.Property]
		if !ok {
			return nil, huma.Error422UnprocessableEntity("unknown property")
		}
		if !s.capture.SetStreamProperty(input.Handle, id, input.Body.Value) {
			return nil, huma.Error404NotFound("property could not be set")
		}
		return &struct{}{}, nil
	})

	// Toggle automatic control of a property
	huma.Register(s.api, huma.Operation{
		OperationID: "set-stream-property-auto",
		Method:      http.MethodPut,
		Path:        "/api/streams/{handle}/properties/{property}/auto",
		Summary:     "Set Property Auto Mode",
		Description: "Enable or disable automatic control of a stream property",
		Tags:        []string{"streams"},
		Errors:      []int{401, 404, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		StreamHandleInput
		Property string `path:"property" example:"exposure" doc:"Property name"`
		Body     PropertyAutoBody
	}) (*struct{}, error) {
		id, ok := propertyNames[input.Property]
		if !ok {
			return nil, huma.Error422UnprocessableEntity("unknown property")
		}
		if !s.capture.SetStreamAutoProperty(input.Handle, id, input.Body.Enabled) {
			return nil, huma.Error404NotFound("property auto mode could not be set")
		}
		return &struct{}{}, nil
	})
}

// streamResponse builds the status payload for a handle.
func (s *Server) streamResponse(handle int32) (*StreamResponse, error) {
	device, mode, ok := s.capture.StreamMode(handle)
	if !ok {
		return nil, huma.Error404NotFound("no stream at handle")
	}

	return &StreamResponse{
		Body: StreamData{
			Handle:     handle,
			Device:     device,
			Width:      mode.Width,
			Height:     mode.Height,
			FourCC:     mode.FourCC.String(),
			Open:       s.capture.IsOpenStream(handle),
			FrameCount: s.capture.StreamFrameCount(handle),
			NewFrame:   s.capture.HasNewFrame(handle),
		},
	}, nil
}

// encodeJPEG compresses a tightly packed RGB24 frame.
func encodeJPEG(frame []byte, width, height uint32) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	si := 0
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = frame[si]
		img.Pix[i+1] = frame[si+1]
		img.Pix[i+2] = frame[si+2]
		img.Pix[i+3] = 255
		si += 3
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
