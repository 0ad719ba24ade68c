// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total number of persistence operations per tier",
		},
		[]string{"tier", "operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "storage_operation_duration_seconds",
			Help: "Duration of persistence operations in seconds",
		},
		[]string{"tier", "operation"},
	)

	// StorageTier is 1 for the tier chosen at startup.
	StorageTier = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_active_tier",
			Help: "Persistence tier selected at startup",
		},
		[]string{"tier"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification send attempts by template and outcome",
		},
		[]string{"template", "status"},
	)

	EmailLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_log_append_failures_total",
			Help: "Email log entries that could not be persisted",
		},
	)

	TrackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "track_events_total",
			Help: "Tracking events received by device class",
		},
		[]string{"device"},
	)

	WaitlistSignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_signups_total",
			Help: "Waitlist signups written",
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Read-through cache lookups by key prefix and result",
		},
		[]string{"cache", "result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Domain events published to SNS",
		},
		[]string{"event", "status"},
	)
)

// Status label values shared by the vectors above.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
