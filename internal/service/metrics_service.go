package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canteen-central/canteen-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation: HTTP traffic,
// report status transitions, notification deliveries, and live WebSocket
// connections.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	wsConnections   prometheus.GaugeFunc
}

type connectionCounter interface {
	TotalConnections() int
}

// NewMetricsService registers core Prometheus collectors. The connection
// counter may be nil when the realtime gateway is disabled.
func NewMetricsService(connections connectionCounter) *MetricsService {
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

	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_status_transitions_total",
		Help: "Report status transitions by report kind and target status",
	}, []string{"kind", "from", "to"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Notifications dispatched by delivery outcome",
	}, []string{"outcome"})

	wsConnections := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "websocket_connections",
		Help: "Currently registered WebSocket connections",
	}, func() float64 {
		if connections == nil {
			return 0
		}
		return float64(connections.TotalConnections())
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, transitionTotal, notifications, wsConnections, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitionTotal: transitionTotal,
		notifications:   notifications,
		wsConnections:   wsConnections,
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

// ObserveStatusTransition counts one completed report status transition.
func (m *MetricsService) ObserveStatusTransition(kind models.ReportKind, old, new models.ReportStatus) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(string(kind), string(old), string(new)).Inc()
}

// ObserveNotification counts one notification delivery attempt.
func (m *MetricsService) ObserveNotification(delivered bool) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(outcome).Inc()
}
