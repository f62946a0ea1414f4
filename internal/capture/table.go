package capture

import (
	"log/slog"
	"sync"
)

// tableEntry pairs a live source with the name of the device it was
// opened on and the negotiated capture mode.
type tableEntry struct {
	src    Source
	device string
	mode   FormatDescriptor
}

// streamTable owns every live Source, keyed by handle. Handles come
// from a strictly increasing counter starting at 0 and are never
// reused, even after removal. Insert, lookup and remove are safe to
// intermix with concurrent producer activity on other streams.
type streamTable struct {
	mu      sync.Mutex
	streams map[int32]tableEntry
	counter int32
	logger  *slog.Logger
}

func newStreamTable(logger *slog.Logger) *streamTable {
	return &streamTable{
		streams: make(map[int32]tableEntry),
		logger:  logger,
	}
}

// store inserts an open source under a freshly minted handle.
func (t *streamTable) store(s Source, device string, mode FormatDescriptor) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	handle := t.counter
	t.counter++
	t.streams[handle] = tableEntry{src: s, device: device, mode: mode}
	return handle
}

// lookup returns the entry at handle, or a zero entry with src == nil.
// Negative handles are rejected before touching the map.
func (t *streamTable) lookup(handle int32) tableEntry {
	if handle < 0 {
		t.logger.Error("negative stream handle", "handle", handle)
		return tableEntry{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streams[handle]
}

// remove takes the entry at handle out of the table and returns it so
// the caller can close the source outside the lock. The handle becomes
// invalid atomically with the removal; it is never handed out again.
func (t *streamTable) remove(handle int32) tableEntry {
	if handle < 0 {
		t.logger.Error("negative stream handle", "handle", handle)
		return tableEntry{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.streams[handle]
	if !ok {
		return tableEntry{}
	}
	delete(t.streams, handle)
	return e
}

// drain empties the table, returning every remaining handle/entry pair
// for teardown.
func (t *streamTable) drain() map[int32]tableEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.streams
	t.streams = make(map[int32]tableEntry)
	return remaining
}

// size returns the number of live streams.
func (t *streamTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streams)
}
