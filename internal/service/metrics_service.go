package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the attendance domain.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	submissionsTotal    *prometheus.CounterVec
	recordsCreated      prometheus.Counter
	reportsRecalculated prometheus.Counter
}

// NewMetricsService registers the collectors.
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

	submissionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_submissions_total",
		Help: "Bulk attendance submissions by outcome",
	}, []string{"outcome"})

	recordsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_records_created_total",
		Help: "Class attendance records written",
	})

	reportsRecalculated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_reports_recalculated_total",
		Help: "Consolidated reports recalculated",
	})

	registry.MustRegister(requestDuration, requestTotal, submissionsTotal, recordsCreated, reportsRecalculated)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		submissionsTotal:    submissionsTotal,
		recordsCreated:      recordsCreated,
		reportsRecalculated: reportsRecalculated,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// CountSubmission tallies one bulk submission outcome.
func (s *MetricsService) CountSubmission(outcome string) {
	s.submissionsTotal.WithLabelValues(outcome).Inc()
}

// AddRecordsCreated adds written attendance rows.
func (s *MetricsService) AddRecordsCreated(n int) {
	s.recordsCreated.Add(float64(n))
}

// AddReportsRecalculated adds recalculated reports.
func (s *MetricsService) AddReportsRecalculated(n int) {
	s.reportsRecalculated.Add(float64(n))
}
