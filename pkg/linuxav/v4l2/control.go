//go:build linux

package v4l2

import (
	"errors"
	"syscall"
	"unsafe"
)

// User class control IDs.
const (
	V4L2_CID_BASE                      = 0x00980900
	V4L2_CID_BRIGHTNESS                = V4L2_CID_BASE + 0
	V4L2_CID_CONTRAST                  = V4L2_CID_BASE + 1
	V4L2_CID_SATURATION                = V4L2_CID_BASE + 2
	V4L2_CID_HUE                       = V4L2_CID_BASE + 3
	V4L2_CID_AUTO_WHITE_BALANCE        = V4L2_CID_BASE + 12
	V4L2_CID_GAMMA                     = V4L2_CID_BASE + 16
	V4L2_CID_AUTOGAIN                  = V4L2_CID_BASE + 18
	V4L2_CID_GAIN                      = V4L2_CID_BASE + 19
	V4L2_CID_POWER_LINE_FREQUENCY      = V4L2_CID_BASE + 24
	V4L2_CID_WHITE_BALANCE_TEMPERATURE = V4L2_CID_BASE + 26
	V4L2_CID_SHARPNESS                 = V4L2_CID_BASE + 27
	V4L2_CID_BACKLIGHT_COMPENSATION    = V4L2_CID_BASE + 28
)

// Camera class control IDs.
const (
	V4L2_CID_CAMERA_CLASS_BASE = 0x009a0900
	V4L2_CID_EXPOSURE_AUTO     = V4L2_CID_CAMERA_CLASS_BASE + 1
	V4L2_CID_EXPOSURE_ABSOLUTE = V4L2_CID_CAMERA_CLASS_BASE + 2
	V4L2_CID_FOCUS_ABSOLUTE    = V4L2_CID_CAMERA_CLASS_BASE + 10
	V4L2_CID_FOCUS_AUTO        = V4L2_CID_CAMERA_CLASS_BASE + 12
	V4L2_CID_ZOOM_ABSOLUTE     = V4L2_CID_CAMERA_CLASS_BASE + 13
)

// V4L2_CID_EXPOSURE_AUTO menu values.
const (
	V4L2_EXPOSURE_AUTO              = 0
	V4L2_EXPOSURE_MANUAL            = 1
	V4L2_EXPOSURE_SHUTTER_PRIORITY  = 2
	V4L2_EXPOSURE_APERTURE_PRIORITY = 3
)

// ErrControlNotSupported is returned when a device does not implement a
// control.
var ErrControlNotSupported = errors.New("control not supported by device")

// queryControl queries a control's range and flags on an open fd.
func queryControl(fd int, id uint32) (ControlInfo, error) {
	query := v4l2_queryctrl{id: id}
	if err := ioctl(fd, VIDIOC_QUERYCTRL, unsafe.Pointer(&query)); err != nil {
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
			return ControlInfo{}, ErrControlNotSupported
		}
		return ControlInfo{}, err
	}

	return ControlInfo{
		ID:       id,
		Name:     cstr(query.name[:]),
		Type:     query.typ,
		Min:      query.minimum,
		Max:      query.maximum,
		Step:     query.step,
		Default:  query.default_value,
		Disabled: query.flags&V4L2_CTRL_FLAG_DISABLED != 0,
	}, nil
}

// getControl reads a control's current value on an open fd.
func getControl(fd int, id uint32) (int32, error) {
	ctrl := v4l2_control{id: id}
	if err := ioctl(fd, VIDIOC_G_CTRL, unsafe.Pointer(&ctrl)); err != nil {
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
			return 0, ErrControlNotSupported
		}
		return 0, err
	}
	return ctrl.value, nil
}

// setControl writes a control value on an open fd.
func setControl(fd int, id uint32, value int32) error {
	ctrl := v4l2_control{id: id, value: value}
	if err := ioctl(fd, VIDIOC_S_CTRL, unsafe.Pointer(&ctrl)); err != nil {
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
			return ErrControlNotSupported
		}
		return err
	}
	return nil
}
