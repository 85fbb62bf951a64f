// Package metrics exposes Prometheus counters for timeline edits and HTTP
// traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// Metrics owns a private registry so several instances can coexist in
// tests.
type Metrics struct {
	registry     *prometheus.Registry
	events       *prometheus.CounterVec
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	openSessions prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeline_events_total",
				Help: "Timeline engine callbacks by event.",
			},
			[]string{"event"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeline_http_requests_total",
				Help: "HTTP requests by method and status.",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "timeline_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timeline_open_sessions",
			Help: "Projects currently loaded into an editing session.",
		}),
	}
	m.registry.MustRegister(m.events, m.requests, m.duration, m.openSessions)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionOpened() {
	m.openSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	m.openSessions.Dec()
}

func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) count(event string) {
	m.events.WithLabelValues(event).Inc()
}

// Instrument wraps every set callback so it is counted before being
// forwarded. Unset callbacks are still counted.
func (m *Metrics) Instrument(cb timeline.Callbacks) timeline.Callbacks {
	if m == nil {
		return cb
	}
	next := cb
	return timeline.Callbacks{
		OnUpdateClip: func(trackID string, item timeline.Item) {
			m.count("update_clip")
			if next.OnUpdateClip != nil {
				next.OnUpdateClip(trackID, item)
			}
		},
		OnInsertClip: func(trackID string, item timeline.Item) {
			m.count("insert_clip")
			if next.OnInsertClip != nil {
				next.OnInsertClip(trackID, item)
			}
		},
		OnDeleteClip: func(trackID, itemID string) {
			m.count("delete_clip")
			if next.OnDeleteClip != nil {
				next.OnDeleteClip(trackID, itemID)
			}
		},
		OnMoveClip: func(itemID, src, dst string, start float64) {
			m.count("move_clip")
			if next.OnMoveClip != nil {
				next.OnMoveClip(itemID, src, dst, start)
			}
		},
		OnClipDragEnd: func(trackID string) {
			m.count("drag_end")
			if next.OnClipDragEnd != nil {
				next.OnClipDragEnd(trackID)
			}
		},
		OnSelectClip: func(trackID, itemID string) {
			m.count("select_clip")
			if next.OnSelectClip != nil {
				next.OnSelectClip(trackID, itemID)
			}
		},
		OnSelectTransition: func(trackID, itemID string) {
			m.count("select_transition")
			if next.OnSelectTransition != nil {
				next.OnSelectTransition(trackID, itemID)
			}
		},
		OnSeek: func(t float64) {
			m.count("seek")
			if next.OnSeek != nil {
				next.OnSeek(t)
			}
		},
		OnPlayPause: func() {
			m.count("play_pause")
			if next.OnPlayPause != nil {
				next.OnPlayPause()
			}
		},
		OnZoom: func(z float64) {
			m.count("zoom")
			if next.OnZoom != nil {
				next.OnZoom(z)
			}
		},
	}
}
