package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTPRequests counts handled requests by method, route template and status.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ustaad_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"method", "route", "status"},
)

var HTTPLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ustaad_http_request_duration_seconds",
		Help:    "Latency of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ProposalTransitions counts proposal submissions and status changes.
var ProposalTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ustaad_proposal_transitions_total",
		Help: "Proposals created or moved to a new status",
	},
	[]string{"status"},
)

var JobsPosted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ustaad_jobs_posted_total",
		Help: "Jobs posted by clients",
	},
)

var NotificationsSent = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ustaad_notifications_total",
		Help: "Notifications dispatched by event type and outcome",
	},
	[]string{"type", "outcome"},
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency)
	prometheus.MustRegister(ProposalTransitions, JobsPosted, NotificationsSent)
}

// RegisterDB exposes connection pool stats for db.
func RegisterDB(db *sql.DB, name string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}
