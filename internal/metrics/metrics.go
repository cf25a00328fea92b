package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// Upstream metrics
var (
	// UpstreamFetchTotal counts source fetches by outcome.
	UpstreamFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eco_ops_upstream_fetch_total",
			Help: "Total number of external source fetches",
		},
		[]string{"source", "outcome"},
	)

	// UpstreamFetchDuration tracks how long each source fetch took.
	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eco_ops_upstream_fetch_duration_seconds",
			Help:    "Duration of external source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

// Dashboard and storage metrics
var (
	DashboardRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eco_ops_dashboard_requests_total",
			Help: "Dashboard aggregations by outcome",
		},
		[]string{"outcome"},
	)

	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eco_ops_store_queries_total",
			Help: "Total number of hour store queries",
		},
		[]string{"op", "status"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eco_ops_store_query_duration_seconds",
			Help:    "Duration of hour store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eco_ops_alerts_total",
			Help: "Error alerts by delivery status",
		},
		[]string{"status"},
	)

	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eco_ops_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// RecordUpstreamFetch records one source fetch.
func RecordUpstreamFetch(source string, fallback bool, duration time.Duration) {
	outcome := OutcomeOK
	if fallback {
		outcome = OutcomeFallback
	}
	UpstreamFetchTotal.WithLabelValues(source, outcome).Inc()
	UpstreamFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordStoreQuery records an hour store query execution.
func RecordStoreQuery(op string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreQueriesTotal.WithLabelValues(op, status).Inc()
	StoreQueryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordDashboard records whether an aggregation served live or fallback data.
func RecordDashboard(fallback bool) {
	outcome := OutcomeOK
	if fallback {
		outcome = OutcomeFallback
	}
	DashboardRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordAlert records the delivery result of an error alert.
func RecordAlert(delivered bool) {
	status := "delivered"
	if !delivered {
		status = "failed"
	}
	AlertsTotal.WithLabelValues(status).Inc()
}
