// Package ingest implements the feed ingestion pipeline: fetching feed
// documents, reconciling their items against stored entries, and persisting
// what is new.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"homefeed/internal/observability/metrics"
	"homefeed/internal/observability/tracing"
	"homefeed/internal/repository"
)

// defaultParallelism bounds how many feeds are ingested concurrently during
// a full run.
const defaultParallelism = 4

// Service provides feed ingestion use cases.
// Concurrent ingestions of the same feed are collapsed into one execution,
// so a feed's entries are never written by two ingestions at once.
type Service struct {
	FeedRepo    repository.FeedRepository
	EntryRepo   repository.EntryRepository
	FeedFetcher FeedFetcher
	Parallelism int

	inflight singleflight.Group
}

// NewService creates a new ingest Service with the provided dependencies.
func NewService(
	feedRepo repository.FeedRepository,
	entryRepo repository.EntryRepository,
	feedFetcher FeedFetcher,
) *Service {
	return &Service{
		FeedRepo:    feedRepo,
		EntryRepo:   entryRepo,
		FeedFetcher: feedFetcher,
		Parallelism: defaultParallelism,
	}
}

// FeedResult contains statistics about a single feed ingestion.
type FeedResult struct {
	FeedID             int64
	Fetched            int
	Stored             int
	SkippedDuplicate   int
	SkippedMissingLink int
	Duration           time.Duration
}

// RunStats contains statistics about a full ingestion run.
type RunStats struct {
	RunID    string
	Feeds    int
	Failed   int
	Fetched  int64
	Stored   int64
	Duration time.Duration
}

// IngestByID fetches and stores new entries for a single feed.
// Returns ErrFeedNotFound if no feed has the given id, a FetchError if the
// document could not be retrieved or parsed, and the storage error
// unchanged when persistence fails.
func (s *Service) IngestByID(ctx context.Context, feedID int64) (*FeedResult, error) {
	feed, err := s.FeedRepo.Get(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if feed == nil {
		return nil, fmt.Errorf("%w: id %d", ErrFeedNotFound, feedID)
	}
	return s.ingestFeed(ctx, feed.ID, feed.FeedURL)
}

// ingestFeed runs the pipeline for one feed. Calls for the same feed id are
// collapsed via singleflight so at most one ingestion per feed is in flight.
func (s *Service) ingestFeed(ctx context.Context, feedID int64, feedURL string) (*FeedResult, error) {
	v, err, _ := s.inflight.Do(fmt.Sprintf("%d", feedID), func() (interface{}, error) {
		return s.doIngest(ctx, feedID, feedURL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*FeedResult), nil
}

func (s *Service) doIngest(ctx context.Context, feedID int64, feedURL string) (*FeedResult, error) {
	logger := slog.Default()
	start := time.Now()

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.feed")
	defer span.End()

	doc, err := s.FeedFetcher.Fetch(ctx, feedURL)
	if err != nil {
		metrics.RecordFeedIngestError(feedID, "fetch_failed")
		return nil, &FetchError{FeedID: feedID, URL: feedURL, Err: err}
	}

	result := &FeedResult{FeedID: feedID, Fetched: len(doc.Candidates)}

	if len(doc.Candidates) == 0 {
		logger.Info("feed document is empty",
			slog.Int64("feed_id", feedID),
			slog.String("feed_url", feedURL))
		result.Duration = time.Since(start)
		return result, nil
	}

	links := make([]string, 0, len(doc.Candidates))
	for _, c := range doc.Candidates {
		if c.Link != "" {
			links = append(links, c.Link)
		}
	}
	existing, err := s.EntryRepo.ExistingLinks(ctx, feedID, links)
	if err != nil {
		metrics.RecordFeedIngestError(feedID, "link_check_failed")
		return nil, fmt.Errorf("check existing links: %w", err)
	}

	reconciled := Reconcile(feedID, existing, doc.Candidates, time.Now())

	if len(reconciled.Entries) > 0 {
		if err := s.EntryRepo.CreateBatch(ctx, reconciled.Entries); err != nil {
			metrics.RecordFeedIngestError(feedID, "store_failed")
			return nil, fmt.Errorf("store entries: %w", err)
		}
	}

	result.Stored = len(reconciled.Entries)
	result.SkippedDuplicate = reconciled.SkippedDuplicate
	result.SkippedMissingLink = reconciled.SkippedMissingLink
	result.Duration = time.Since(start)

	metrics.RecordFeedIngest(feedID, result.Duration)
	metrics.RecordEntriesStored("", feedID, result.Stored)
	metrics.RecordEntriesSkipped(feedID, "duplicate", result.SkippedDuplicate)
	metrics.RecordEntriesSkipped(feedID, "missing_link", result.SkippedMissingLink)

	logger.Info("feed ingest completed",
		slog.Int64("feed_id", feedID),
		slog.Int("fetched", result.Fetched),
		slog.Int("stored", result.Stored),
		slog.Int("skipped_duplicate", result.SkippedDuplicate),
		slog.Int("skipped_missing_link", result.SkippedMissingLink),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// IngestAll fetches and stores new entries for every feed.
// A feed whose document cannot be retrieved or parsed is logged and skipped;
// the run continues with the remaining feeds. Storage errors abort the run.
func (s *Service) IngestAll(ctx context.Context) (*RunStats, error) {
	logger := slog.Default()
	start := time.Now()

	stats := &RunStats{RunID: uuid.NewString()}

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.run",
		trace.WithAttributes(attribute.String("run_id", stats.RunID)))
	defer span.End()

	feeds, err := s.FeedRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	stats.Feeds = len(feeds)

	parallelism := s.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	results := make(chan *FeedResult, len(feeds))
	failures := make(chan int64, len(feeds))

	for _, feed := range feeds {
		f := feed
		eg.Go(func() error {
			res, err := s.ingestFeed(egCtx, f.ID, f.FeedURL)
			if err != nil {
				var fetchErr *FetchError
				if errors.As(err, &fetchErr) {
					logger.Warn("failed to fetch feed, skipping",
						slog.String("run_id", stats.RunID),
						slog.Int64("feed_id", f.ID),
						slog.String("feed_url", f.FeedURL),
						slog.Any("error", err))
					failures <- f.ID
					return nil
				}
				// Storage and context errors are critical
				return err
			}
			results <- res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return stats, fmt.Errorf("ingest run %s: %w", stats.RunID, err)
	}
	close(results)
	close(failures)

	for res := range results {
		stats.Fetched += int64(res.Fetched)
		stats.Stored += int64(res.Stored)
	}
	for range failures {
		stats.Failed++
	}

	stats.Duration = time.Since(start)
	metrics.RecordIngestRun(stats.Duration)

	logger.Info("ingest run completed",
		slog.String("run_id", stats.RunID),
		slog.Int("feeds", stats.Feeds),
		slog.Int("failed", stats.Failed),
		slog.Int64("fetched", stats.Fetched),
		slog.Int64("stored", stats.Stored),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}
