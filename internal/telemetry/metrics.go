// Package telemetry provides application-level observability for the license
// key backend.
//
// All metrics are registered against the default Prometheus registry and are
// served by the side-channel HTTP server started in cmd/server:
//
//	GET http://<host>:<LKA_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not part of the Gin router so the
// scrape path stays off the public ingress and out of rate limiting.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/keys/:ref)
// rather than the raw URL to prevent unbounded label cardinality from
// user-supplied path segments such as key tokens.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajinzmodzhp/admin-panel2/internal/safego"
)

// HTTP metrics, labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Domain metrics for the key lifecycle.
//
// KeyValidationsTotal is labelled by outcome: claimed, valid, not_found,
// expired, device_mismatch. Example PromQL:
//
//	sum by (outcome) (rate(key_validations_total[5m]))
var (
	KeysGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keys_generated_total",
			Help: "Total number of license keys successfully generated.",
		},
	)

	KeyGenerationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "key_generation_failures_total",
			Help: "Total number of key generation attempts that exhausted their collision retry budget.",
		},
	)

	KeyValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "key_validations_total",
			Help: "Total number of key validation requests, by outcome.",
		},
		[]string{"outcome"},
	)

	KeysDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keys_deleted_total",
			Help: "Total number of license keys deleted by administrators.",
		},
	)
)

// Database connection pool gauge, polled by StartDBStatsCollector.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open connections in the database pool.",
	},
)

// StartDBStatsCollector begins exporting DB pool statistics every 30 seconds.
// The collector stops itself if the database becomes unreachable.
func StartDBStatsCollector(db *sql.DB) {
	safego.Go(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	})
}
