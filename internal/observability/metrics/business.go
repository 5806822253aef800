package metrics

import (
	"fmt"
	"time"
)

// RecordEntriesStored records the number of new entries stored for a feed.
func RecordEntriesStored(feedName string, feedID int64, count int) {
	EntriesStoredTotal.WithLabelValues(
		feedName,
		fmt.Sprintf("%d", feedID),
	).Add(float64(count))
}

// RecordEntriesSkipped records candidates skipped during reconciliation.
// Reason should be "duplicate" or "missing_link".
func RecordEntriesSkipped(feedID int64, reason string, count int) {
	if count <= 0 {
		return
	}
	EntriesSkippedTotal.WithLabelValues(
		fmt.Sprintf("%d", feedID),
		reason,
	).Add(float64(count))
}

// RecordFeedIngest records metrics for a single feed ingestion.
func RecordFeedIngest(feedID int64, duration time.Duration) {
	FeedIngestDuration.WithLabelValues(
		fmt.Sprintf("%d", feedID),
	).Observe(duration.Seconds())
}

// RecordFeedIngestError records an error during feed ingestion.
func RecordFeedIngestError(feedID int64, errorType string) {
	FeedIngestErrors.WithLabelValues(
		fmt.Sprintf("%d", feedID),
		errorType,
	).Inc()
}

// RecordIngestRun records the duration of a full ingestion run.
func RecordIngestRun(duration time.Duration) {
	IngestRunDuration.Observe(duration.Seconds())
}

// RecordIconResolution records the outcome of a feed icon resolution.
// Result should be "declared" (icon announced by the page), "fallback"
// (the /favicon.ico probe) or "none".
func RecordIconResolution(result string) {
	IconResolutionsTotal.WithLabelValues(result).Inc()
}

// UpdateFeedsTotal updates the total count of feeds in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateFeedsTotal(count int) {
	FeedsTotal.Set(float64(count))
}

// UpdateEntriesTotal updates the total count of entries in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateEntriesTotal(count int64) {
	EntriesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_entries", "insert_entry").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
