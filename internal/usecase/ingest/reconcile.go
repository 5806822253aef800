package ingest

import (
	"time"

	"homefeed/internal/domain/entity"
)

// ReconcileResult breaks down what happened to each candidate of a batch.
type ReconcileResult struct {
	Entries            []*entity.Entry
	SkippedDuplicate   int
	SkippedMissingLink int
}

// Reconcile turns fetched candidates into storable entries.
//
// Candidates without a link are skipped: the link is the identity of an
// entry and nothing meaningful can be stored without it. A candidate whose
// link is already stored for the feed is skipped. When the same link appears
// more than once within the batch, the first occurrence wins and later ones
// are dropped, so a single pass is idempotent and repeated passes over an
// unchanged document store nothing.
//
// The published timestamp falls back from the item's published date to its
// updated date to now, in Unix seconds.
func Reconcile(feedID int64, existing map[string]bool, candidates []Candidate, now time.Time) ReconcileResult {
	var result ReconcileResult
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if c.Link == "" {
			result.SkippedMissingLink++
			continue
		}
		if existing[c.Link] || seen[c.Link] {
			result.SkippedDuplicate++
			continue
		}
		seen[c.Link] = true

		entry := &entity.Entry{
			FeedID:    feedID,
			Link:      c.Link,
			Title:     c.Title,
			Published: publishedAt(c, now),
		}
		if c.Summary != "" {
			summary := c.Summary
			entry.Summary = &summary
		}
		if c.Author != "" {
			author := c.Author
			entry.Author = &author
		}

		result.Entries = append(result.Entries, entry)
	}

	return result
}

// publishedAt resolves the entry timestamp: published date, then updated
// date, then the ingestion time.
func publishedAt(c Candidate, now time.Time) int64 {
	if c.PublishedAt != nil {
		return c.PublishedAt.Unix()
	}
	if c.UpdatedAt != nil {
		return c.UpdatedAt.Unix()
	}
	return now.Unix()
}
