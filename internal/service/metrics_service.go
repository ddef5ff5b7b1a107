package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the timetable server.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	sessionLatency   *prometheus.HistogramVec
	sessionMisses    prometheus.Counter
	generated        *prometheus.CounterVec
	freeSlots        prometheus.Histogram
	entriesPerRun    prometheus.Histogram
	renderDuration   prometheus.Histogram
	emptyGenerations prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sessionLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "session_store_latency_seconds",
		Help:    "Latency for session store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	sessionMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_store_misses_total",
		Help: "Lookups for sessions that hold no entries yet",
	})

	generated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetables_generated_total",
		Help: "Timetables generated, by conflict mode",
	}, []string{"mode"})

	freeSlots := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_free_slots",
		Help:    "Slots left free per generated timetable",
		Buckets: prometheus.LinearBuckets(0, 2, 10),
	})

	entriesPerRun := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_entries",
		Help:    "Teacher/subject entries per generation",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})

	renderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_render_seconds",
		Help:    "Time spent rendering timetable PDFs",
		Buckets: prometheus.DefBuckets,
	})

	emptyGenerations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_empty_generations_total",
		Help: "Generate requests rejected because no entries were added",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sessionLatency, sessionMisses, generated, freeSlots, entriesPerRun, renderDuration, emptyGenerations, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		sessionLatency:   sessionLatency,
		sessionMisses:    sessionMisses,
		generated:        generated,
		freeSlots:        freeSlots,
		entriesPerRun:    entriesPerRun,
		renderDuration:   renderDuration,
		emptyGenerations: emptyGenerations,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSessionOp records the latency of a session store call.
func (m *MetricsService) ObserveSessionOp(op string, miss bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.sessionLatency.WithLabelValues(op).Observe(duration.Seconds())
	if miss {
		m.sessionMisses.Inc()
	}
}

// RecordGeneration tracks a generated timetable.
func (m *MetricsService) RecordGeneration(strict bool, entries, free int) {
	if m == nil {
		return
	}
	mode := "permissive"
	if strict {
		mode = "strict"
	}
	m.generated.WithLabelValues(mode).Inc()
	m.entriesPerRun.Observe(float64(entries))
	m.freeSlots.Observe(float64(free))
}

// RecordEmptyGeneration counts generate calls made without entries.
func (m *MetricsService) RecordEmptyGeneration() {
	if m == nil {
		return
	}
	m.emptyGenerations.Inc()
}

// ObserveRender tracks PDF render time.
func (m *MetricsService) ObserveRender(duration time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.Observe(duration.Seconds())
}
