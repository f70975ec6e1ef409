// cmd/newsloom/fetcher.go
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// browserUserAgent mirrors a current desktop Chrome; several catalog sites
// serve empty shells or 403s to anything that looks like a bot
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxPageBodyBytes = 5 * 1024 * 1024 // 5MB

// PageFetcher retrieves raw HTML for article pages
type PageFetcher struct {
	client    *http.Client
	userAgent string
}

// NewPageFetcher creates a fetcher with browser-like identity
func NewPageFetcher(c *Config) *PageFetcher {
	ua := c.UserAgent
	if ua == "" {
		ua = browserUserAgent
	}
	return &PageFetcher{
		client: &http.Client{
			Timeout: DefaultPageTimeout,
			Transport: &http.Transport{
				MaxIdleConns:      100,
				IdleConnTimeout:   90 * time.Second,
				MaxConnsPerHost:   10,
				ForceAttemptHTTP2: true,
			},
		},
		userAgent: ua,
	}
}

// Fetch returns the page body for a URL. Timeouts, TLS errors, and non-2xx
// statuses are all reported as errors; callers treat every failure uniformly
// as "no content".
func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", NewFetchError(ErrFetchRequest, "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", NewFetchError(ErrFetchRequest, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", NewFetchError(ErrFetchStatus, fmt.Sprintf("HTTP %d for %s", resp.StatusCode, url), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBodyBytes))
	if err != nil {
		return "", NewFetchError(ErrFetchBody, "failed to read body", err)
	}
	return string(body), nil
}
