package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	awardsTotal     *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	leaderboardTime prometheus.Observer
	sseClients      prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
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

	awardsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eco_points_awards_total",
		Help: "Total processed ecoPoints awards",
	}, []string{"outcome"})

	pointsAwarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eco_points_awarded_total",
		Help: "Sum of ecoPoints granted to students",
	})

	leaderboardTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leaderboard_recompute_seconds",
		Help:    "Duration of full leaderboard rebuilds",
		Buckets: prometheus.DefBuckets,
	})

	sseClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_clients_connected",
		Help: "Currently connected realtime clients",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, awardsTotal, pointsAwarded, leaderboardTime, sseClients, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		awardsTotal:     awardsTotal,
		pointsAwarded:   pointsAwarded,
		leaderboardTime: leaderboardTime,
		sseClients:      sseClients,
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

// RecordAward counts one processed award and its granted points. Dropped
// awards (unknown student) carry zero points.
func (m *MetricsService) RecordAward(delivered bool, points int) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if !delivered {
		outcome = "dropped"
	}
	m.awardsTotal.WithLabelValues(outcome).Inc()
	if delivered && points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
}

// ObserveLeaderboardRecompute tracks rebuild latency.
func (m *MetricsService) ObserveLeaderboardRecompute(duration time.Duration) {
	if m == nil {
		return
	}
	m.leaderboardTime.Observe(duration.Seconds())
}

// SSEClientConnected adjusts the connected-clients gauge.
func (m *MetricsService) SSEClientConnected(delta int) {
	if m == nil {
		return
	}
	m.sseClients.Add(float64(delta))
}
