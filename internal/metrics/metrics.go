package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	commandsTotal     *prometheus.CounterVec
	sessions          prometheus.Gauge
	broadcastDrops    prometheus.Counter
	weightSamples     prometheus.Counter
	deviceConnected   prometheus.Gauge
	finalizations     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weighbridge_commands_total",
			Help: "Gateway messages handled by type and outcome.",
		}, []string{"type", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weighbridge_sessions",
			Help: "Connected realtime sessions.",
		}),
		broadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weighbridge_broadcast_drops_total",
			Help: "Messages dropped because a session's outbound queue was full.",
		}),
		weightSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weighbridge_weight_samples_total",
			Help: "Weight samples parsed from the indicator.",
		}),
		deviceConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weighbridge_device_connected",
			Help: "1 while the weight indicator is open, 0 otherwise.",
		}),
		finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weighbridge_finalizations_total",
			Help: "Second weighment captures by result (finalized, not_found, error).",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.commandsTotal,
		m.sessions,
		m.broadcastDrops,
		m.weightSamples,
		m.deviceConnected,
		m.finalizations,
		collectors.NewGoCollector(),
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Command(messageType, outcome string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(messageType, outcome).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

func (m *Metrics) BroadcastDropped() {
	if m == nil {
		return
	}
	m.broadcastDrops.Inc()
}

func (m *Metrics) WeightSample() {
	if m == nil {
		return
	}
	m.weightSamples.Inc()
}

func (m *Metrics) SetDeviceConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.deviceConnected.Set(1)
	} else {
		m.deviceConnected.Set(0)
	}
}

func (m *Metrics) Finalization(result string) {
	if m == nil {
		return
	}
	m.finalizations.WithLabelValues(result).Inc()
}
