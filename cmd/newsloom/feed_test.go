// cmd/newsloom/feed_test.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func rssDocument(items int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title><link>https://example.com</link><description>test</description>`)
	for i := 0; i < items; i++ {
		fmt.Fprintf(&b, `<item>
<title>Article %d</title>
<link>https://example.com/articles/%d</link>
<description>Summary of article %d</description>
<pubDate>Mon, 02 Jan 2006 15:04:0%d -0700</pubDate>
</item>`, i, i, i, i%10)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestFeedReaderReadsItemsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssDocument(3))
	}))
	defer srv.Close()

	reader := NewFeedReader(testConfig())
	items := reader.Read(context.Background(), Source{Name: "Test", FeedURL: srv.URL})

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		wantTitle := fmt.Sprintf("Article %d", i)
		if item.Title != wantTitle {
			t.Errorf("item %d title = %q, want %q (feed order must be preserved)", i, item.Title, wantTitle)
		}
		if item.PublishedAt.IsZero() {
			t.Errorf("item %d has zero publish time", i)
		}
	}
}

func TestFeedReaderCapsItemCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssDocument(25))
	}))
	defer srv.Close()

	c := testConfig()
	reader := NewFeedReader(c)
	items := reader.Read(context.Background(), Source{Name: "Test", FeedURL: srv.URL})

	if len(items) != c.MaxItemsPerSource {
		t.Errorf("expected %d items, got %d", c.MaxItemsPerSource, len(items))
	}
}

func TestFeedReaderMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not XML at all")
	}))
	defer srv.Close()

	reader := NewFeedReader(testConfig())
	items := reader.Read(context.Background(), Source{Name: "Broken", FeedURL: srv.URL})
	if items != nil {
		t.Errorf("malformed feed should yield no items, got %d", len(items))
	}
}

func TestFeedReaderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	reader := NewFeedReader(testConfig())
	if items := reader.Read(context.Background(), Source{Name: "Down", FeedURL: srv.URL}); items != nil {
		t.Errorf("HTTP 500 should yield no items, got %d", len(items))
	}
}

func TestFeedReaderNoFeedURL(t *testing.T) {
	reader := NewFeedReader(testConfig())
	if items := reader.Read(context.Background(), Source{Name: "No Feed"}); items != nil {
		t.Errorf("source without feed URL should yield no items, got %d", len(items))
	}
}

func TestFeedReaderSendsIdentityHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, rssDocument(1))
	}))
	defer srv.Close()

	reader := NewFeedReader(testConfig())
	reader.Read(context.Background(), Source{Name: "Test", FeedURL: srv.URL})

	if gotUA == "" || !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("User-Agent not browser-like: %q", gotUA)
	}
	if !strings.Contains(gotAccept, "rss") {
		t.Errorf("Accept header missing feed types: %q", gotAccept)
	}
}

func TestFeedReaderSkipsItemsMissingLink(t *testing.T) {
	doc := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title><description>d</description>
<item><title>Has link</title><link>https://example.com/a</link></item>
<item><title>No link</title></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}))
	defer srv.Close()

	reader := NewFeedReader(testConfig())
	items := reader.Read(context.Background(), Source{Name: "Test", FeedURL: srv.URL})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Has link" {
		t.Errorf("wrong item survived: %q", items[0].Title)
	}
}

func TestPublishDateDefaultsToNow(t *testing.T) {
	doc := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title><description>d</description>
<item><title>Undated</title><link>https://example.com/a</link></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}))
	defer srv.Close()

	before := time.Now().UTC().Add(-time.Minute)
	reader := NewFeedReader(testConfig())
	items := reader.Read(context.Background(), Source{Name: "Test", FeedURL: srv.URL})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].PublishedAt.Before(before) {
		t.Errorf("undated item publish time not defaulted to now: %v", items[0].PublishedAt)
	}
}
