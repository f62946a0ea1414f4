package capture

import (
	"sync"
)

// FrameCell is a single-producer/single-consumer latest-value slot for
// decoded frames. The producer publishes complete frames; the newest
// frame overwrites the previous undelivered one, so a slow consumer
// drops frames instead of building a queue. An edge-triggered flag
// tracks whether an undelivered frame is pending: observation does not
// clear it, only a successful Take does.
type FrameCell struct {
	mu        sync.Mutex
	frame     []byte
	size      int
	pending   bool
	delivered uint32
	onDrop    func()
}

// NewFrameCell creates a cell for frames of exactly size bytes.
// onDrop, if non-nil, is invoked each time an undelivered frame is
// overwritten.
func NewFrameCell(size int, onDrop func()) *FrameCell {
	return &FrameCell{
		frame:  make([]byte, size),
		size:   size,
		onDrop: onDrop,
	}
}

// Size returns the frame size in bytes.
func (c *FrameCell) Size() int {
	return c.size
}

// Publish stores a new complete frame, replacing whatever the cell
// held. Returns true if an undelivered frame was overwritten.
func (c *FrameCell) Publish(src []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := c.pending
	copy(c.frame, src)
	c.pending = true

	if dropped && c.onDrop != nil {
		c.onDrop()
	}
	return dropped
}

// Pending reports whether an undelivered frame is waiting. Calling it
// repeatedly does not change the answer.
func (c *FrameCell) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Take copies the pending frame into dst, clears the pending flag and
// bumps the delivered counter. Fails without side effects if dst is too
// small or no frame is pending.
func (c *FrameCell) Take(dst []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(dst) < c.size {
		return false
	}
	if !c.pending {
		return false
	}

	copy(dst, c.frame[:c.size])
	c.pending = false
	c.delivered++
	return true
}

// Delivered returns the lifetime count of frames handed out via Take.
// The counter never resets.
func (c *FrameCell) Delivered() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delivered
}
