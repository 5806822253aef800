// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics track feed ingestion runs
var (
	// EntriesStoredTotal counts new entries stored per feed
	EntriesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entries_stored_total",
			Help: "Total number of new entries stored",
		},
		[]string{"feed", "feed_id"},
	)

	// EntriesSkippedTotal counts candidates skipped during reconciliation
	EntriesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entries_skipped_total",
			Help: "Total number of feed items skipped during reconciliation",
		},
		[]string{"feed_id", "reason"}, // reason: duplicate, missing_link
	)

	// FeedIngestDuration measures time to ingest a single feed
	FeedIngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_ingest_duration_seconds",
			Help:    "Time taken to ingest a single feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"feed_id"},
	)

	// FeedIngestErrors counts errors during feed ingestion
	FeedIngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_ingest_errors_total",
			Help: "Total number of feed ingest errors",
		},
		[]string{"feed_id", "error_type"},
	)

	// IngestRunDuration measures time for a full ingest-all run
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Time taken for a full ingestion run over all feeds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// IconResolutionsTotal counts icon resolution attempts by result
	IconResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icon_resolutions_total",
			Help: "Total number of feed icon resolution attempts",
		},
		[]string{"result"}, // result: declared, fallback, none
	)
)

// Inventory metrics track database totals
var (
	// FeedsTotal tracks total number of feeds in database
	FeedsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feeds_total",
			Help: "Total number of feeds in the database",
		},
	)

	// EntriesTotal tracks total number of entries in database
	EntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "entries_total",
			Help: "Total number of entries in the database",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
