// Package scraper provides implementations for fetching RSS/Atom feeds.
// It uses the gofeed library to parse feed content with reliability patterns.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"homefeed/internal/resilience/circuitbreaker"
	"homefeed/internal/resilience/retry"
	"homefeed/internal/usecase/ingest"
)

// defaultTimeout caps a single fetch attempt.
const defaultTimeout = 30 * time.Second

// userAgent identifies the fetcher to feed servers.
const userAgent = "HomefeedBot"

// FeedFetcher implements ingest.FeedFetcher using the gofeed library.
// It includes circuit breaker, retry logic and a shared rate limiter for
// improved reliability and politeness toward feed servers.
type FeedFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter
}

// NewFeedFetcher creates a new FeedFetcher with the given HTTP client.
// A nil client gets a default one with a 30 second timeout.
func NewFeedFetcher(client *http.Client) *FeedFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &FeedFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		// 5 fetches per second across the whole run, bursts of 10
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// Fetch retrieves and parses a feed document from the given URL.
// It uses circuit breaker and retry logic for improved reliability.
func (f *FeedFetcher) Fetch(ctx context.Context, feedURL string) (*ingest.Document, error) {
	var doc *ingest.Document

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		doc = cbResult.(*ingest.Document)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return doc, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *FeedFetcher) doFetch(ctx context.Context, feedURL string) (*ingest.Document, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]ingest.Candidate, 0, len(feed.Items))
	for _, it := range feed.Items {
		candidates = append(candidates, ingest.Candidate{
			Link:        it.Link,
			Title:       it.Title,
			Summary:     it.Description,
			Author:      itemAuthor(it),
			PublishedAt: it.PublishedParsed,
			UpdatedAt:   it.UpdatedParsed,
		})
	}

	return &ingest.Document{
		Title:      feed.Title,
		SiteLink:   feed.Link,
		Candidates: candidates,
	}, nil
}

// itemAuthor extracts the first author name from a feed item, if any.
func itemAuthor(it *gofeed.Item) string {
	if len(it.Authors) > 0 && it.Authors[0] != nil {
		return it.Authors[0].Name
	}
	if it.Author != nil {
		return it.Author.Name
	}
	return ""
}
