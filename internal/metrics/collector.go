// Package metrics records upload session metrics with Prometheus.
//
// A capture device usually runs camship as a one-shot job, so metrics are
// exported through the node_exporter textfile format rather than served.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/camship/internal/domain"
)

// Collector implements app.SessionObserver.
type Collector struct {
	registry *prometheus.Registry

	framesSent    prometheus.Counter
	frameBytes    prometheus.Histogram
	framesSkipped *prometheus.CounterVec
	pacingWait    prometheus.Histogram
	transitions   *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	lastSession   prometheus.Gauge
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Frames written to the upload stream.",
		}),
		frameBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_size_bytes",
			Help:      "Size of frames written to the upload stream.",
			Buckets:   prometheus.ExponentialBuckets(4<<10, 2, 8),
		}),
		framesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Capture attempts that produced no frame.",
		}, []string{"reason"}),
		pacingWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pacing_wait_seconds",
			Help:      "Time slept to hold the target frame interval.",
			Buckets:   prometheus.LinearBuckets(0.025, 0.025, 10),
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state transitions by target state.",
		}, []string{"state"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished sessions by outcome.",
		}, []string{"outcome"}),
		lastSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_session_timestamp_seconds",
			Help:      "Unix time the last session finished.",
		}),
	}
}

// OnStateChange counts transitions and finished sessions.
func (c *Collector) OnStateChange(previous, current domain.State) {
	c.transitions.WithLabelValues(current.String()).Inc()
	switch current {
	case domain.StateClosed:
		c.sessions.WithLabelValues("success").Inc()
		c.lastSession.SetToCurrentTime()
	case domain.StateAborted:
		c.sessions.WithLabelValues("aborted_" + previous.String()).Inc()
		c.lastSession.SetToCurrentTime()
	}
}

// OnFrameSent records one written frame.
func (c *Collector) OnFrameSent(ordinal, size int, waited time.Duration) {
	c.framesSent.Inc()
	c.frameBytes.Observe(float64(size))
	c.pacingWait.Observe(waited.Seconds())
}

// OnFrameSkipped records one failed capture.
func (c *Collector) OnFrameSkipped(ordinal int, err error) {
	reason := "error"
	if errors.Is(err, domain.ErrNoFrame) {
		reason = "no_frame"
	}
	c.framesSkipped.WithLabelValues(reason).Inc()
}

// WriteTextfile writes all metrics to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
