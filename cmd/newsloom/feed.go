// cmd/newsloom/feed.go
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxFeedBodyBytes = 10 * 1024 * 1024 // 10MB

// FeedReader parses syndication feeds into candidate items
type FeedReader struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
	maxItems  int
}

// NewFeedReader creates a feed reader with the configured limits
func NewFeedReader(c *Config) *FeedReader {
	return &FeedReader{
		client: &http.Client{
			Timeout: DefaultFeedTimeout,
		},
		parser:    gofeed.NewParser(),
		userAgent: c.UserAgent,
		maxItems:  c.MaxItemsPerSource,
	}
}

// Read returns up to maxItems candidate items for a source, in feed order.
// A source without a feed URL yields no items; any fetch or parse failure
// yields an empty list and is logged, never surfaced as an error.
func (r *FeedReader) Read(ctx context.Context, source Source) []FeedItem {
	if source.FeedURL == "" {
		// Placeholder for a site-scrape path; sources without feeds are
		// registered but produce nothing until a feed URL is repaired in.
		return nil
	}

	feed, err := r.fetchFeed(ctx, source.FeedURL)
	if err != nil {
		GetLogger().Warning("Feed read failed for %s: %v", source.Name, err)
		return nil
	}

	var items []FeedItem
	for _, item := range feed.Items {
		if len(items) >= r.maxItems {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}

		items = append(items, FeedItem{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: publishDate(item),
			Summary:     item.Description,
			Content:     item.Content,
		})
	}
	return items
}

// fetchFeed retrieves and parses one feed document
func (r *FeedReader) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFeedError(ErrFeedFetch, "failed to create request", err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, NewFeedError(ErrFeedFetch, "failed to fetch feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewFeedError(ErrFeedFetch, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return nil, NewFeedError(ErrFeedFetch, "failed to read feed body", err)
	}

	feed, err := r.parser.ParseString(string(body))
	if err != nil {
		return nil, NewFeedError(ErrFeedParse, "failed to parse feed", err)
	}
	return feed, nil
}

// publishDate picks the best-effort publication time, defaulting to now
func publishDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}
