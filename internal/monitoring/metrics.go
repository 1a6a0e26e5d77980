package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Generation metrics
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	RewritesTotal      prometheus.Counter
	HandlesLive        prometheus.Gauge

	// Bridge metrics
	BridgeRequests *prometheus.CounterVec

	// Overlay metrics
	OverlayOps *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMetrics creates a metrics collector registered on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),
		stop:      make(chan struct{}),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "preview_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_generations_total",
				Help: "Total number of render generations built",
			},
			[]string{"outcome"},
		),
		GenerationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "preview_generation_duration_seconds",
				Help:    "Generation build duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		RewritesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "preview_asset_rewrites_total",
				Help: "Total number of asset references rewritten to handles",
			},
		),
		HandlesLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "preview_handles_live",
				Help: "Number of live ephemeral resource handles",
			},
		),

		BridgeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_bridge_requests_total",
				Help: "Total number of bridge fetch requests answered",
			},
			[]string{"status"},
		),

		OverlayOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_overlay_ops_total",
				Help: "Total number of overlay mutations",
			},
			[]string{"op", "status"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "preview_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "preview_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric until Close
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Uptime.Set(time.Since(m.startTime).Seconds())
		}
	}
}

// Close stops the uptime ticker goroutine. Safe to call more than once.
func (m *Metrics) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration records one generation build
func (m *Metrics) RecordGeneration(rewrites int, placeholder bool, duration time.Duration) {
	outcome := "rendered"
	if placeholder {
		outcome = "placeholder"
	}
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
	m.RewritesTotal.Add(float64(rewrites))
}

// RecordBridgeRequest records one answered bridge fetch
func (m *Metrics) RecordBridgeRequest(status int) {
	m.BridgeRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordOverlayOp records one overlay mutation
func (m *Metrics) RecordOverlayOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OverlayOps.WithLabelValues(op, status).Inc()
}

// SetHandlesLive sets the live handle gauge
func (m *Metrics) SetHandlesLive(count int) {
	m.HandlesLive.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
