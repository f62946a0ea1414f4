package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Capture holds the Prometheus instruments for the capture subsystem.
// All instruments are registered on a private registry so tests can
// create isolated instances.
type Capture struct {
	registry *prometheus.Registry

	OpenStreams     prometheus.Gauge
	FramesDelivered *prometheus.CounterVec
	FramesDropped   *prometheus.CounterVec
	OpenFailures    prometheus.Counter
	CaptureErrors   prometheus.Counter
}

// NewCapture creates and registers the capture metric set.
func NewCapture() *Capture {
	registry := prometheus.NewRegistry()

	m := &Capture{
		registry: registry,
		OpenStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "capnode_open_streams",
			Help: "Number of currently open capture streams.",
		}),
		FramesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capnode_frames_delivered_total",
			Help: "Frames delivered to callers via captureFrame.",
		}, []string{"device"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capnode_frames_dropped_total",
			Help: "Frames overwritten before the consumer collected them.",
		}, []string{"device"}),
		OpenFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capnode_open_failures_total",
			Help: "Failed attempts to open a capture stream.",
		}),
		CaptureErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capnode_capture_errors_total",
			Help: "Backend capture errors observed on open streams.",
		}),
	}

	registry.MustRegister(
		m.OpenStreams,
		m.FramesDelivered,
		m.FramesDropped,
		m.OpenFailures,
		m.CaptureErrors,
	)

	return m
}

// Handler returns an HTTP handler serving the metric set in Prometheus
// exposition format.
func (m *Capture) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
