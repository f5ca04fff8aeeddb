package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailIngestedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_ingested_count",
			Help: "Total number of emails ingested",
		},
		[]string{"source", "relevant"}, // source: api, gmail_sync
	)

	NotificationCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_created_count",
			Help: "Total number of notifications created",
		},
		[]string{"type"}, // type: relevant, deadline_reminder
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classify_duration_seconds",
			Help:    "Relevance classification duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	DeadlineScanRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deadline_scan_runs_total",
			Help: "Total number of deadline scan job executions",
		},
	)

	DeadlineScanReminders = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deadline_scan_reminders_total",
			Help: "Total number of reminder notifications created by the scan job",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

func IncrementEmailIngested(source string, relevant bool) {
	if relevant {
		EmailIngestedCount.WithLabelValues(source, "true").Inc()
	} else {
		EmailIngestedCount.WithLabelValues(source, "false").Inc()
	}
}

func IncrementNotificationCreated(notifType string) {
	NotificationCreatedCount.WithLabelValues(notifType).Inc()
}

func ObserveClassifyDuration(d time.Duration) {
	ClassifyDuration.Observe(d.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
