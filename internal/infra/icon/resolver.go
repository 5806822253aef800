// Package icon resolves a site's icon URL for display next to feed entries.
package icon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"homefeed/internal/observability/metrics"
	"homefeed/internal/resilience/circuitbreaker"
	"homefeed/internal/resilience/retry"
)

// defaultTimeout caps a single icon request.
const defaultTimeout = 15 * time.Second

// userAgent mirrors a browser; some sites refuse bot agents for favicon
// requests.
const userAgent = "Mozilla/5.0"

// Resolver finds a usable icon URL for a site.
//
// Resolution is two-step: first the site's HTML is scanned for a link
// element whose rel tokens include "icon"; if none is declared, the
// conventional /favicon.ico path is probed. Resolution is best effort and
// never fails the caller: any unreachable or missing icon yields ("", nil).
type Resolver struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewResolver creates a new Resolver with the given HTTP client.
// A nil client gets a default one with a 15 second timeout.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Resolver{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.IconFetchConfig()),
		retryConfig:    retry.IconFetchConfig(),
	}
}

// Resolve returns the icon URL for the site, or "" when none can be found.
// The returned error is always nil; it is kept in the signature so the
// resolver can satisfy interfaces alongside fallible implementations.
func (r *Resolver) Resolve(ctx context.Context, siteURL string) (string, error) {
	logger := slog.Default()

	if siteURL == "" {
		metrics.RecordIconResolution("none")
		return "", nil
	}

	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		logger.Warn("icon resolution skipped, invalid site url",
			slog.String("site_url", siteURL))
		metrics.RecordIconResolution("none")
		return "", nil
	}

	if declared := r.declaredIcon(ctx, base); declared != "" {
		metrics.RecordIconResolution("declared")
		return declared, nil
	}

	if fallback := r.probeFavicon(ctx, base); fallback != "" {
		metrics.RecordIconResolution("fallback")
		return fallback, nil
	}

	logger.Info("no icon found for site",
		slog.String("site_url", siteURL))
	metrics.RecordIconResolution("none")
	return "", nil
}

// declaredIcon scans the site's HTML for a link element announcing an icon.
// Relative hrefs are resolved against the page URL.
func (r *Resolver) declaredIcon(ctx context.Context, base *url.URL) string {
	logger := slog.Default()

	body, err := r.get(ctx, base.String())
	if err != nil {
		logger.Warn("failed to fetch site page for icon scan",
			slog.String("site_url", base.String()),
			slog.Any("error", err))
		return ""
	}
	defer func() { _ = body.Body.Close() }()

	doc, err := goquery.NewDocumentFromReader(body.Body)
	if err != nil {
		logger.Warn("failed to parse site page for icon scan",
			slog.String("site_url", base.String()),
			slog.Any("error", err))
		return ""
	}

	var href string
	doc.Find("link[rel]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rel, _ := sel.Attr("rel")
		if !hasIconToken(rel) {
			return true
		}
		if h, ok := sel.Attr("href"); ok && h != "" {
			href = h
			return false
		}
		return true
	})

	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// hasIconToken reports whether a rel attribute contains the "icon" token.
// Matches "icon", "shortcut icon" and "icon shortcut" variants.
func hasIconToken(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "icon" {
			return true
		}
	}
	return false
}

// probeFavicon checks whether the conventional /favicon.ico path answers.
func (r *Resolver) probeFavicon(ctx context.Context, base *url.URL) string {
	faviconURL := base.ResolveReference(&url.URL{Path: "/favicon.ico"}).String()

	resp, err := r.get(ctx, faviconURL)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	return faviconURL
}

// get performs an HTTP GET through the circuit breaker and retry logic.
// Non-2xx/3xx statuses are reported as retry.HTTPError so retryability is
// decided by status code.
func (r *Resolver) get(ctx context.Context, rawURL string) (*http.Response, error) {
	var resp *http.Response

	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.doGet(ctx, rawURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("icon fetch circuit breaker open, request rejected",
					slog.String("service", "icon-fetch"),
					slog.String("url", rawURL),
					slog.String("state", r.circuitBreaker.State().String()))
			}
			return err
		}

		resp = cbResult.(*http.Response)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// doGet performs the actual request without retry or circuit breaker.
func (r *Resolver) doGet(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	return resp, nil
}
