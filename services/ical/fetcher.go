package ical

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"maisonette/utils"

	"golang.org/x/time/rate"
)

// maxFeedSize caps how much of a feed body is read.
const maxFeedSize = 10 << 20

// Fetcher downloads the raw text of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches feeds over HTTP, spacing requests with Limiter so a
// batch sync does not hammer the platforms.
type HTTPFetcher struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	UserAgent string
}

// NewHTTPFetcher allows one request per interval. A zero interval
// disables pacing.
func NewHTTPFetcher(timeout, interval time.Duration) *HTTPFetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		Limiter:   rate.NewLimiter(limit, 1),
		UserAgent: "maisonette-calendar-sync/1.0",
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("ical: wait for fetch slot: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", utils.NewUpstreamError("invalid feed url", err)
	}
	req.Header.Set("Accept", "text/calendar, text/plain;q=0.9, */*;q=0.1")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", utils.NewUpstreamError("feed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", utils.NewUpstreamError("feed request failed", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return "", utils.NewUpstreamError("reading feed failed", err)
	}
	return string(body), nil
}
