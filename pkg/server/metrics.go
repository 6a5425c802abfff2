package server

import (
	"time"

	"github.com/chazu/mindscape/pkg/layout"
	"github.com/prometheus/client_golang/prometheus"
)

// Upload outcomes, used as the "outcome" label.
const (
	outcomeOK             = "ok"
	outcomeBadRequest     = "bad_request"
	outcomeTooLarge       = "too_large"
	outcomeInvalidJSON    = "invalid_json"
	outcomeInvalidMap     = "invalid_map"
	outcomeUnsupported    = "unsupported"
	outcomeNotImplemented = "not_implemented"
)

type metrics struct {
	layoutSeconds *prometheus.HistogramVec
	events        *prometheus.CounterVec
	sessions      prometheus.Gauge
	uploads       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		layoutSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindscape",
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing a layout, by strategy.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"mode"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindscape",
			Name:      "viewer_events_total",
			Help:      "Viewer events applied, by kind.",
		}, []string{"kind"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mindscape",
			Name:      "sessions_active",
			Help:      "Open websocket viewer sessions.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindscape",
			Name:      "uploads_total",
			Help:      "Mind-map uploads, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.layoutSeconds, m.events, m.sessions, m.uploads)
	return m
}

func (m *metrics) observeLayout(mode layout.Mode, took time.Duration) {
	m.layoutSeconds.WithLabelValues(mode.String()).Observe(took.Seconds())
}
