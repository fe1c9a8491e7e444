package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the registry
// API: HTTP traffic, rule-engine outcomes and the schedule cache.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ruleRejections  *prometheus.CounterVec
	registrations   prometheus.Counter
	assignments     prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the core Prometheus collectors.
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

	ruleRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_rule_rejections_total",
		Help: "Domain rule rejections by rule",
	}, []string{"rule"})

	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_registrations_total",
		Help: "Total student term registrations inserted",
	})

	assignments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_assignments_total",
		Help: "Total student subject assignments inserted",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total schedule cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total schedule cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, ruleRejections, registrations, assignments, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ruleRejections:  ruleRejections,
		registrations:   registrations,
		assignments:     assignments,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordRuleRejection counts one domain rule rejection, labelled by rule
// name (term_overlap, slot_conflict, eligibility).
func (m *MetricsService) RecordRuleRejection(rule string) {
	if m == nil {
		return
	}
	m.ruleRejections.WithLabelValues(rule).Inc()
}

// RecordRegistrations counts actually inserted registrations.
func (m *MetricsService) RecordRegistrations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.registrations.Add(float64(n))
}

// RecordAssignments counts actually inserted assignments.
func (m *MetricsService) RecordAssignments(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.assignments.Add(float64(n))
}

// RecordCacheLookup counts a schedule cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}
