//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) API
// for device enumeration, format queries, camera controls, and
// memory-mapped frame capture.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Enumeration
//
// Use FindDevices to discover all V4L2 video capture devices:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.DevicePath, dev.DeviceName)
//	}
//
// # Format Queries
//
// Query supported formats and resolutions:
//
//	formats, _ := v4l2.GetFormats("/dev/video0")
//	for _, f := range formats {
//	    resolutions, _ := v4l2.GetResolutions("/dev/video0", f.PixelFormat)
//	}
//
// # Frame Capture
//
// Open a camera with a negotiated format and read frames via mmap
// buffers:
//
//	cam, err := v4l2.OpenCamera("/dev/video0", 640, 480, v4l2.V4L2_PIX_FMT_YUYV)
//	defer cam.Close()
//	for {
//	    ready, _ := cam.WaitFrame(1000)
//	    if ready {
//	        n, _ := cam.ReadFrame(buf)
//	    }
//	}
//
// # Camera Controls
//
// Query and adjust controls like exposure or focus on an open camera:
//
//	info, _ := cam.QueryControl(v4l2.V4L2_CID_EXPOSURE_ABSOLUTE)
//	cam.SetControl(v4l2.V4L2_CID_EXPOSURE_ABSOLUTE, info.Default)
package v4l2
