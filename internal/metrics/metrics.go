package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ActiveItems is the current number of active inventory items.
	ActiveItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_active_items",
			Help: "Number of active inventory items",
		},
	)

	// OpenAudits is the current number of audits still open.
	OpenAudits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_open_audits",
			Help: "Number of audits currently open",
		},
	)

	// AuditScansTotal counts audit scans accepted by the engine. Idempotent
	// repeats are not counted; only first scans of an item are.
	AuditScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_scans_total",
			Help: "Total number of audit scans recorded",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, ActiveItems, OpenAudits, AuditScansTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /v1/items/123 -> /v1/items/{id}, /v1/audits/45/scan -> /v1/audits/{id}/scan.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// SetActiveItems updates the active-items gauge (called by the scheduler).
func SetActiveItems(n int) {
	ActiveItems.Set(float64(n))
}

// SetOpenAudits updates the open-audits gauge (called by the scheduler).
func SetOpenAudits(n int) {
	OpenAudits.Set(float64(n))
}

// IncAuditScans increments the scan counter (call when a scan row is committed).
func IncAuditScans() {
	AuditScansTotal.Inc()
}
