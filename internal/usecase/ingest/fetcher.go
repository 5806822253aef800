package ingest

import (
	"context"
	"time"
)

// Candidate is a single feed item as delivered by the fetcher, before
// deduplication and normalization. String fields are empty when the feed did
// not provide them; timestamps are nil when the feed carried no parseable
// date.
type Candidate struct {
	Link        string
	Title       string
	Summary     string
	Author      string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
}

// Document is a parsed feed document.
type Document struct {
	Title      string
	SiteLink   string
	Candidates []Candidate
}

// FeedFetcher retrieves and parses a feed document from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (*Document, error)
}
