// Package metrics provides Prometheus metrics for the ironsys batch runs and
// the read API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scoring
	rowsScored   prometheus.Counter
	totalsBombed prometheus.Counter
	rowsSkipped  *prometheus.CounterVec

	// Archive and alerts
	historyAppended  prometheus.Counter
	alertsEmitted    *prometheus.CounterVec
	alertsSuppressed prometheus.Counter

	// Notification delivery
	notificationsSent   *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec

	// Runs
	runDuration *prometheus.HistogramVec
	runErrors   *prometheus.CounterVec
	lastRunUnix *prometheus.GaugeVec

	// Read model
	leaderboardSize prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ironsys",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsScored = auto.NewCounter(m.counterOpts("rows_scored_total",
		"Tournament rows scored"))
	m.totalsBombed = auto.NewCounter(m.counterOpts("totals_bombed_total",
		"Rows whose total was zeroed by a bombed discipline"))
	m.rowsSkipped = auto.NewCounterVec(m.counterOpts("rows_skipped_total",
		"Rows skipped as routine data-quality exclusions"), []string{"operation", "reason"})

	m.historyAppended = auto.NewCounter(m.counterOpts("history_appended_total",
		"Records appended to the tournament history"))
	m.alertsEmitted = auto.NewCounterVec(m.counterOpts("alerts_emitted_total",
		"Alerts appended to the alert log"), []string{"kind"})
	m.alertsSuppressed = auto.NewCounter(m.counterOpts("alerts_suppressed_total",
		"Alerts dropped by the weekly dedupe"))

	m.notificationsSent = auto.NewCounterVec(m.counterOpts("notifications_sent_total",
		"Alert notifications delivered"), []string{"driver"})
	m.notificationsFailed = auto.NewCounterVec(m.counterOpts("notifications_failed_total",
		"Alert notifications that failed"), []string{"driver"})

	m.runDuration = auto.NewHistogramVec(m.histogramOpts("run_duration_milliseconds",
		"Batch run duration in milliseconds"), []string{"operation"})
	m.runErrors = auto.NewCounterVec(m.counterOpts("run_errors_total",
		"Batch runs that aborted"), []string{"operation", "error_type"})
	m.lastRunUnix = auto.NewGaugeVec(m.gaugeOpts("last_run_unix",
		"Unix time of the last completed run"), []string{"operation"})

	m.leaderboardSize = auto.NewGauge(m.gaugeOpts("leaderboard_size",
		"Athletes in the served leaderboard"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP responses with an error status"), []string{"endpoint", "method", "error_type", "severity"})
}

// RecordRowsScored adds scored rows and the bombed totals among them.
func RecordRowsScored(rows, bombed int) {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsScored.Add(float64(rows))
	globalManager.totalsBombed.Add(float64(bombed))
}

// RecordRowsSkipped counts rows excluded from an operation.
func RecordRowsSkipped(operation, reason string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.rowsSkipped.WithLabelValues(operation, reason).Add(float64(n))
}

// RecordHistoryAppended counts archived records.
func RecordHistoryAppended(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.historyAppended.Add(float64(n))
}

// RecordAlert counts one appended alert of the given kind.
func RecordAlert(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.alertsEmitted.WithLabelValues(kind).Inc()
}

// RecordAlertsSuppressed counts alerts dropped by dedupe.
func RecordAlertsSuppressed(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.alertsSuppressed.Add(float64(n))
}

// RecordNotification counts one delivery attempt.
func RecordNotification(driver string, ok bool) {
	if !globalManager.enabled {
		return
	}
	if ok {
		globalManager.notificationsSent.WithLabelValues(driver).Inc()
		return
	}
	globalManager.notificationsFailed.WithLabelValues(driver).Inc()
}

// RecordRun observes a completed run.
func RecordRun(operation string, d time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.runDuration.WithLabelValues(operation).Observe(float64(d.Milliseconds()))
	globalManager.lastRunUnix.WithLabelValues(operation).Set(float64(time.Now().Unix()))
}

// RecordRunError counts an aborted run.
func RecordRunError(operation, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.runErrors.WithLabelValues(operation, errorType).Inc()
}

// UpdateLeaderboardSize sets the read-model size.
func UpdateLeaderboardSize(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.leaderboardSize.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, method, errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType, severity).Inc()
}

// SetEnabled switches recording on or off for the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
