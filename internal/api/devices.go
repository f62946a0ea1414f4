package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// registerDeviceRoutes registers device enumeration endpoints.
func (s *Server) registerDeviceRoutes() {
	// List all devices with their capture modes
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List capture devices enumerated at startup with their supported modes",
		Tags:        []string{"devices"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*DeviceListResponse, error) {
		count := s.capture.DeviceCount()
		devices := make([]DeviceData, 0, count)

		for deviceID := uint32(0); deviceID < count; deviceID++ {
			name, ok := s.capture.DeviceName(deviceID)
			if !ok {
				continue
			}

			formatCount, _ := s.capture.FormatCount(deviceID)
			formats := make([]FormatData, 0, formatCount)
			for formatID := uint32(0); formatID < uint32(formatCount); formatID++ {
				mode, ok := s.capture.FormatInfo(deviceID, formatID)
				if !ok {
					continue
				}
				formats = append(formats, FormatData{
					FormatID:   formatID,
					Width:      mode.Width,
					Height:     mode.Height,
					FourCC:     mode.FourCC.String(),
					Framerates: mode.Framerates,
				})
			}

			stableID, _ := s.capture.Registry().StableID(deviceID)
			devices = append(devices, DeviceData{
				DeviceID: deviceID,
				Name:     name,
				StableID: stableID,
				Formats:  formats,
			})
		}

		return &DeviceListResponse{
			Body: DeviceListData{
				Devices: devices,
				Count:   len(devices),
			},
		}, nil
	})

	// Get one device
	huma.Register(s.api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}",
		Summary:     "Get Device",
		Description: "Get one device and its supported capture modes",
		Tags:        []string{"devices"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		DeviceID uint32 `path:"device_id" example:"0" doc:"Device ordinal"`
	}) (*struct{ Body DeviceData }, error) {
		name, ok := s.capture.DeviceName(input.DeviceID)
		if !ok {
			return nil, huma.Error404NotFound("device not found")
		}

		formatCount, _ := s.capture.FormatCount(input.DeviceID)
		formats := make([]FormatData, 0, formatCount)
		for formatID := uint32(0); formatID < uint32(formatCount); formatID++ {
			mode, ok := s.capture.FormatInfo(input.DeviceID, formatID)
			if !ok {
				continue
			}
			formats = append(formats, FormatData{
				FormatID: formatID,
				Width:    mode.Width,
				Height:   mode.Height,
				FourCC:   mode.FourCC.String(),
			})
		}

		stableID, _ := s.capture.Registry().StableID(input.DeviceID)
		return &struct{ Body DeviceData }{
			Body: DeviceData{
				DeviceID: input.DeviceID,
				Name:     name,
				StableID: stableID,
				Formats:  formats,
			},
		}, nil
	})
}
