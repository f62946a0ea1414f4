// Package sources provides the platform capture backends behind the
// capture.Source contract. The Linux backend streams V4L2 mmap buffers
// and converts frames to RGB24; other platforms get a stub that never
// opens.
package sources

import (
	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/events"
	"github.com/capnode/capnode/internal/metrics"
)

// NewFactory returns a factory producing unopened platform sources.
// Metrics and bus may be nil; drop/error accounting and failure events
// are then skipped.
func NewFactory(m *metrics.Capture, bus *events.Bus) capture.SourceFactory {
	return func() capture.Source {
		return newSource(m, bus)
	}
}
