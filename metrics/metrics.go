// Package metrics provides Prometheus metrics for the catalog server.
// It exports HTTP request metrics labelled by chi route pattern and catalog
// gauges refreshed periodically by the scheduler:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - catalog_rows: Gauge with a table label
//   - catalog_database_size_bytes, catalog_sessions_active: Gauges
//   - catalog_confirmations_total: Counter with action and outcome labels
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giygas/medication-catalog/interfaces"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen in the last ~5 minutes)",
		},
	)

	CatalogRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_rows",
			Help: "Rows per catalog table at the last refresh",
		},
		[]string{"table"},
	)

	DatabaseSizeBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_database_size_bytes",
			Help: "Size of the SQLite database file",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sessions_active",
			Help: "Browser sessions tracked for flashes and confirmations",
		},
	)

	Confirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_confirmations_total",
			Help: "Destructive actions by confirmation outcome (armed, confirmed)",
		},
		[]string{"action", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CatalogRows)
	prometheus.MustRegister(DatabaseSizeBytes)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(Confirmations)
}

// SessionCounter reports how many sessions are live.
type SessionCounter interface {
	Len() int
}

// InfoSource is the part of the store the refresh job reads.
type InfoSource interface {
	Info(ctx context.Context) (*interfaces.DatabaseInfo, error)
}

// RecordConfirmation counts one step of the two-click protocol.
func RecordConfirmation(action string, confirmed bool) {
	outcome := "armed"
	if confirmed {
		outcome = "confirmed"
	}
	Confirmations.WithLabelValues(action, outcome).Inc()
}

// RefreshCatalogMetrics samples row counts, file size and live sessions.
// sessions may be nil.
func RefreshCatalogMetrics(ctx context.Context, store InfoSource, sessions SessionCounter) error {
	info, err := store.Info(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog metrics: %w", err)
	}

	for kind, n := range info.RowCounts {
		CatalogRows.WithLabelValues(kind.Table()).Set(float64(n))
	}
	DatabaseSizeBytes.Set(float64(info.SizeBytes))

	if sessions != nil {
		SessionsActive.Set(float64(sessions.Len()))
	}
	return nil
}
