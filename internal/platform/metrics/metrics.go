// Package metrics exposes Prometheus instrumentation for the task pipeline
// and the HTTP API. All collectors live in a dedicated registry so the
// /metrics endpoint never picks up collectors from linked-in libraries.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calfield/brief-api/internal/domain"
)

// Metrics holds the pipeline and HTTP collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	tasksTotal        *prometheus.CounterVec
	tasksInFlight     prometheus.Gauge
	summarizeDuration *prometheus.HistogramVec
	tasksRecovered    prometheus.Counter

	notificationsTotal *prometheus.CounterVec
	sweepBatchSize     prometheus.Histogram

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	tasksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brief",
			Subsystem: "pipeline",
			Name:      "tasks_total",
			Help:      "Total tasks driven to a terminal state, by outcome.",
		},
		[]string{"status"},
	)
	tasksInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "brief",
			Subsystem: "pipeline",
			Name:      "tasks_in_flight",
			Help:      "Number of tasks currently being summarized.",
		},
	)
	summarizeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brief",
			Subsystem: "pipeline",
			Name:      "summarize_duration_seconds",
			Help:      "End-to-end summarization duration per task, by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)
	tasksRecovered := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "brief",
			Subsystem: "pipeline",
			Name:      "tasks_recovered_total",
			Help:      "Pending tasks re-driven by the recovery sweeper.",
		},
	)
	notificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brief",
			Subsystem: "pipeline",
			Name:      "notifications_total",
			Help:      "Notification delivery outcomes by channel and status.",
		},
		[]string{"channel", "status"},
	)
	sweepBatchSize := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "brief",
			Subsystem: "pipeline",
			Name:      "notification_sweep_batch_size",
			Help:      "Number of pending notification events picked up per sweep.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brief",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brief",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		tasksTotal,
		tasksInFlight,
		summarizeDuration,
		tasksRecovered,
		notificationsTotal,
		sweepBatchSize,
		requestTotal,
		requestDuration,
	)

	return &Metrics{
		registry:           registry,
		tasksTotal:         tasksTotal,
		tasksInFlight:      tasksInFlight,
		summarizeDuration:  summarizeDuration,
		tasksRecovered:     tasksRecovered,
		notificationsTotal: notificationsTotal,
		sweepBatchSize:     sweepBatchSize,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
	}
}

// Handler returns the HTTP handler serving this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartTask records a task entering summarization.
func (m *Metrics) StartTask() {
	m.tasksInFlight.Inc()
}

// FinishTask records a task reaching a terminal state.
func (m *Metrics) FinishTask(status domain.TaskStatus, duration time.Duration) {
	m.tasksInFlight.Dec()
	m.tasksTotal.WithLabelValues(string(status)).Inc()
	m.summarizeDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

// TaskRecovered records one pending task re-driven by the recovery sweeper.
func (m *Metrics) TaskRecovered() {
	m.tasksRecovered.Inc()
}

// NotificationOutcome records a notification event's delivery outcome.
func (m *Metrics) NotificationOutcome(channel domain.Channel, status domain.NotificationStatus) {
	m.notificationsTotal.WithLabelValues(string(channel), string(status)).Inc()
}

// ObserveSweepBatch records the size of one notification sweep batch.
func (m *Metrics) ObserveSweepBatch(n int) {
	m.sweepBatchSize.Observe(float64(n))
}

// Middleware instruments HTTP handlers with request count and duration,
// labeled by the chi route pattern rather than the raw path so tenant and
// task IDs do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := routePattern(r)
		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
