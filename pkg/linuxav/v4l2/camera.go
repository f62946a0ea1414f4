//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

const requestedBuffers = 4

// ErrFormatRejected is returned when the driver does not accept the
// requested capture format.
var ErrFormatRejected = errors.New("device rejected requested format")

// Camera is an open V4L2 capture device streaming frames through
// memory-mapped kernel buffers.
type Camera struct {
	fd          int
	path        string
	width       uint32
	height      uint32
	pixelFormat uint32
	sizeImage   uint32
	buffers     [][]byte
	streaming   bool
}

// OpenCamera opens a device, negotiates the capture format, and starts
// streaming with mmap buffers. The driver must accept the exact width,
// height, and pixel format or an error is returned.
func OpenCamera(devicePath string, width, height, pixelFormat uint32) (*Camera, error) {
	fd, err := open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %w", err)
	}

	cam := &Camera{fd: fd, path: devicePath}
	if err := cam.setup(width, height, pixelFormat); err != nil {
		cam.Close()
		return nil, err
	}
	return cam, nil
}

func (c *Camera) setup(width, height, pixelFormat uint32) error {
	format := v4l2_format{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE}
	format.pix.width = width
	format.pix.height = height
	format.pix.pixelformat = pixelFormat
	format.pix.field = V4L2_FIELD_NONE

	if err := ioctl(c.fd, VIDIOC_S_FMT, unsafe.Pointer(&format)); err != nil {
		return fmt.Errorf("failed to set format: %w", err)
	}

	// Drivers adjust the format instead of failing. Treat any deviation
	// as a rejection so callers only ever stream what they asked for.
	if format.pix.width != width || format.pix.height != height || format.pix.pixelformat != pixelFormat {
		return fmt.Errorf("%w: got %dx%d %s", ErrFormatRejected,
			format.pix.width, format.pix.height, FormatFourCC(format.pix.pixelformat))
	}

	c.width = format.pix.width
	c.height = format.pix.height
	c.pixelFormat = format.pix.pixelformat
	c.sizeImage = format.pix.sizeimage

	reqbufs := v4l2_requestbuffers{
		count:  requestedBuffers,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err := ioctl(c.fd, VIDIOC_REQBUFS, unsafe.Pointer(&reqbufs)); err != nil {
		return fmt.Errorf("failed to request buffers: %w", err)
	}
	if reqbufs.count < 2 {
		return fmt.Errorf("driver granted only %d buffers", reqbufs.count)
	}

	c.buffers = make([][]byte, reqbufs.count)
	for i := uint32(0); i < reqbufs.count; i++ {
		buf := v4l2_buffer{
			index:  i,
			typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
			memory: V4L2_MEMORY_MMAP,
		}
		if err := ioctl(c.fd, VIDIOC_QUERYBUF, unsafe.Pointer(&buf)); err != nil {
			return fmt.Errorf("failed to query buffer %d: %w", i, err)
		}

		data, err := syscall.Mmap(c.fd, int64(buf.offset), int(buf.length),
			syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
		if err != nil {
			return fmt.Errorf("failed to mmap buffer %d: %w", i, err)
		}
		c.buffers[i] = data

		if err := ioctl(c.fd, VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
			return fmt.Errorf("failed to queue buffer %d: %w", i, err)
		}
	}

	bufType := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := ioctl(c.fd, VIDIOC_STREAMON, unsafe.Pointer(&bufType)); err != nil {
		return fmt.Errorf("failed to start streaming: %w", err)
	}
	c.streaming = true
	return nil
}

// Width returns the negotiated frame width.
func (c *Camera) Width() uint32 { return c.width }

// Height returns the negotiated frame height.
func (c *Camera) Height() uint32 { return c.height }

// PixelFormat returns the negotiated pixel format.
func (c *Camera) PixelFormat() uint32 { return c.pixelFormat }

// SizeImage returns the driver's maximum frame size in bytes.
func (c *Camera) SizeImage() uint32 { return c.sizeImage }

// WaitFrame blocks until a frame is ready or the timeout expires.
// Returns true when a frame can be dequeued.
func (c *Camera) WaitFrame(timeoutMs int) (bool, error) {
	var readFds syscall.FdSet
	readFds.Bits[c.fd/64] |= 1 << (uint(c.fd) % 64)

	var tv *syscall.Timeval
	if timeoutMs > 0 {
		tv = makeTimeval(timeoutMs)
	}

	n, err := syscall.Select(c.fd+1, &readFds, nil, nil, tv)
	if err != nil {
		if errors.Is(err, syscall.EINTR) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

// ReadFrame dequeues a filled buffer, copies the frame into dst, and
// requeues the buffer. Returns the number of bytes copied, or 0 if no
// frame was ready. dst must be at least SizeImage bytes.
func (c *Camera) ReadFrame(dst []byte) (int, error) {
	buf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err := ioctl(c.fd, VIDIOC_DQBUF, unsafe.Pointer(&buf)); err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to dequeue buffer: %w", err)
	}

	n := copy(dst, c.buffers[buf.index][:buf.bytesused])

	if err := ioctl(c.fd, VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
		return n, fmt.Errorf("failed to requeue buffer %d: %w", buf.index, err)
	}
	return n, nil
}

// QueryControl queries a control's range, default, and flags.
func (c *Camera) QueryControl(id uint32) (ControlInfo, error) {
	return queryControl(c.fd, id)
}

// GetControl reads a control's current value.
func (c *Camera) GetControl(id uint32) (int32, error) {
	return getControl(c.fd, id)
}

// SetControl writes a control value.
func (c *Camera) SetControl(id uint32, value int32) error {
	return setControl(c.fd, id, value)
}

// Close stops streaming, unmaps buffers, and closes the device.
func (c *Camera) Close() error {
	if c.streaming {
		bufType := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
		_ = ioctl(c.fd, VIDIOC_STREAMOFF, unsafe.Pointer(&bufType))
		c.streaming = false
	}

	for i, buf := range c.buffers {
		if buf != nil {
			_ = syscall.Munmap(buf)
			c.buffers[i] = nil
		}
	}

	if c.fd >= 0 {
		err := close(c.fd)
		c.fd = -1
		return err
	}
	return nil
}
