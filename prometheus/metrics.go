package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_login_total",
			Help: "Total number of admin login attempts",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_request", "user_not_found", "invalid_password", "session_expired", ...
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Status transition counter
	TransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_status_transitions_total",
			Help: "Total number of resource status transitions",
		},
		[]string{"resource", "transition"}, // e.g. ("payment", "confirm"), ("credit_facility", "approve")
	)

	// Broker publish counter
	BrokerPublishCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_broker_publish_total",
			Help: "Total number of events published to the message broker",
		},
		[]string{"key"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Uploads currently streaming
	ActiveUploadsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backoffice_active_uploads",
			Help: "Number of file uploads currently in flight",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backoffice_info",
			Help: "Information about the back-office service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(TransitionCounter)
	prometheus.MustRegister(BrokerPublishCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveUploadsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTransition records a resource status transition
func RecordTransition(resource, transition string) {
	TransitionCounter.With(prometheus.Labels{
		"resource":   resource,
		"transition": transition,
	}).Inc()
}

// RecordBrokerPublish records an event published to the broker
func RecordBrokerPublish(key string) {
	BrokerPublishCounter.With(prometheus.Labels{"key": key}).Inc()
}
