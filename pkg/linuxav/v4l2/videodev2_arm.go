//go:build linux && arm && !arm64

package v4l2

import "unsafe"

// Compile-time struct size assertions for 32-bit ARM.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [104]byte = [unsafe.Sizeof(v4l2_capability{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(v4l2_fmtdesc{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(v4l2_frmsize_discrete{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(v4l2_frmsize_stepwise{})]byte{}
	_ [44]byte  = [unsafe.Sizeof(v4l2_frmsizeenum{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(v4l2_fract{})]byte{}
	_ [52]byte  = [unsafe.Sizeof(v4l2_frmivalenum{})]byte{}
	_ [204]byte = [unsafe.Sizeof(v4l2_format{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2_requestbuffers{})]byte{}
	_ [80]byte  = [unsafe.Sizeof(v4l2_buffer{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(v4l2_timecode{})]byte{}
	_ [68]byte  = [unsafe.Sizeof(v4l2_queryctrl{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(v4l2_control{})]byte{}
)

// IOCTL constants for 32-bit ARM.
// Most values match 64-bit since the struct sizes are identical. The
// format and buffer ioctls differ because struct timeval and union
// alignment shrink on 32-bit.
const (
	VIDIOC_QUERYCAP            = 0x80685600
	VIDIOC_ENUM_FMT            = 0xc0405602
	VIDIOC_G_FMT               = 0xc0cc5604 // v4l2_format is 204 bytes on 32-bit
	VIDIOC_S_FMT               = 0xc0cc5605
	VIDIOC_REQBUFS             = 0xc0145608
	VIDIOC_QUERYBUF            = 0xc0505609 // v4l2_buffer is 80 bytes on 32-bit
	VIDIOC_QBUF                = 0xc050560f
	VIDIOC_DQBUF               = 0xc0505611
	VIDIOC_STREAMON            = 0x40045612
	VIDIOC_STREAMOFF           = 0x40045613
	VIDIOC_G_CTRL              = 0xc008561b
	VIDIOC_S_CTRL              = 0xc008561c
	VIDIOC_QUERYCTRL           = 0xc0445624
	VIDIOC_ENUM_FRAMESIZES     = 0xc02c564a
	VIDIOC_ENUM_FRAMEINTERVALS = 0xc034564b
)

// v4l2_capability has size 104 bytes (same as 64-bit).
type v4l2_capability struct {
	driver       [16]byte
	card         [32]byte
	bus_info     [32]byte
	version      uint32
	capabilities uint32
	device_caps  uint32
	reserved     [3]uint32
}

// v4l2_fmtdesc has size 64 bytes (same as 64-bit).
type v4l2_fmtdesc struct {
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelformat uint32
	mbus_code   uint32
	reserved    [3]uint32
}

// v4l2_frmsize_discrete has size 8 bytes.
type v4l2_frmsize_discrete struct {
	width  uint32
	height uint32
}

// v4l2_frmsize_stepwise has size 24 bytes.
type v4l2_frmsize_stepwise struct {
	min_width   uint32
	max_width   uint32
	step_width  uint32
	min_height  uint32
	max_height  uint32
	step_height uint32
}

// v4l2_frmsizeenum has size 44 bytes.
type v4l2_frmsizeenum struct {
	index        uint32
	pixel_format uint32
	typ          uint32
	discrete     v4l2_frmsize_discrete
	_            [16]byte // padding for stepwise
	reserved     [2]uint32
}

// v4l2_fract has size 8 bytes.
type v4l2_fract struct {
	numerator   uint32
	denominator uint32
}

// v4l2_frmivalenum has size 52 bytes.
type v4l2_frmivalenum struct {
	index        uint32
	pixel_format uint32
	width        uint32
	height       uint32
	typ          uint32
	discrete     v4l2_fract
	_            [16]byte // padding for stepwise
	reserved     [2]uint32
}

// v4l2_pix_format has size 48 bytes (same as 64-bit).
type v4l2_pix_format struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcr_enc    uint32
	quantization uint32
	xfer_func    uint32
}

// v4l2_format has size 204 bytes on 32-bit (no padding before the union).
type v4l2_format struct {
	typ uint32          // offset 0
	pix v4l2_pix_format // offset 4 (union with other format types)
	_   [152]byte       // filler to union size 200
}

// v4l2_requestbuffers has size 20 bytes (same as 64-bit).
type v4l2_requestbuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

// v4l2_timecode has size 16 bytes.
type v4l2_timecode struct {
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

// v4l2_buffer has size 80 bytes on 32-bit with time64 userspace
// (timeval is 16 bytes, the memory union is 4 bytes).
type v4l2_buffer struct {
	index     uint32        // offset 0
	typ       uint32        // offset 4
	bytesused uint32        // offset 8
	flags     uint32        // offset 12
	field     uint32        // offset 16
	_         [4]byte       // padding to align timestamp
	timestamp [16]byte      // offset 24, struct timeval
	timecode  v4l2_timecode // offset 40
	sequence  uint32        // offset 56
	memory    uint32        // offset 60
	offset    uint32        // offset 64 (union m: offset/userptr/planes/fd)
	length    uint32        // offset 68
	reserved2 uint32        // offset 72
	requestFd uint32        // offset 76
}

// v4l2_queryctrl has size 68 bytes (same as 64-bit).
type v4l2_queryctrl struct {
	id            uint32
	typ           uint32
	name          [32]byte
	minimum       int32
	maximum       int32
	step          int32
	default_value int32
	flags         uint32
	reserved      [2]uint32
}

// v4l2_control has size 8 bytes (same as 64-bit).
type v4l2_control struct {
	id    uint32
	value int32
}
