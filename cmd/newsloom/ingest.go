// cmd/newsloom/ingest.go
package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ingestor fans out across enabled sources, turns feed items into normalized
// articles, and persists them with insert-if-absent semantics
type Ingestor struct {
	store    Store
	feeds    *FeedReader
	pages    *PageFetcher
	pipeline *ExtractionPipeline
	cfg      *Config

	// feedCache throttles per-source fetches between scheduled runs
	feedCache *Cache
}

// NewIngestor wires the ingestion orchestrator
func NewIngestor(store Store, feeds *FeedReader, pages *PageFetcher, pipeline *ExtractionPipeline, c *Config) *Ingestor {
	ttl := time.Duration(c.MinFetchIntervalMins) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Ingestor{
		store:     store,
		feeds:     feeds,
		pages:     pages,
		pipeline:  pipeline,
		cfg:       c,
		feedCache: NewCache(ttl, 256),
	}
}

// FetchAll retrieves candidates from every source concurrently and returns
// them keyed by source name. A single source's failure contributes an empty
// list and never aborts the batch; sources are fetched with no ordering
// guarantee between them.
func (ing *Ingestor) FetchAll(ctx context.Context, enabledOnly bool) (map[string][]*Article, error) {
	sources, err := ing.store.ListSources(ctx, enabledOnly)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()[:8]
	GetLogger().Info("Fetch run %s: %d sources", runID, len(sources))

	results := make(chan FetchResult, len(sources))
	sem := make(chan struct{}, ing.cfg.FetchConcurrency)
	var wg sync.WaitGroup

	for _, source := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					GetLogger().Error("Panic fetching %s: %v", src.Name, r)
					results <- FetchResult{Source: src.Name}
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			articles := ing.fetchSource(ctx, src)
			results <- FetchResult{
				Source:    src.Name,
				Articles:  articles,
				FetchTime: time.Now().UTC(),
			}
		}(source)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Merge strictly after each task completes; the channel is the only
	// state shared between source tasks.
	all := make(map[string][]*Article, len(sources))
	for _, src := range sources {
		all[src.Name] = []*Article{}
	}
	total := 0
	for result := range results {
		all[result.Source] = result.Articles
		total += len(result.Articles)
	}

	GetLogger().Info("Fetch run %s complete: %d candidates", runID, total)
	return all, nil
}

// fetchSource produces the article candidates for one source. All failures
// are contained here; the worst outcome is an empty slice.
func (ing *Ingestor) fetchSource(ctx context.Context, src Source) []*Article {
	if cached, ok := ing.feedCache.Get(src.Name); ok {
		GetLogger().Debug("Source %s fetched recently, serving cached items", src.Name)
		return cached.([]*Article)
	}

	if src.FeedURL == "" {
		return nil
	}

	items := ing.feeds.Read(ctx, src)
	if items == nil {
		if err := ing.store.RecordSourceError(ctx, src.Name, NewFeedError(ErrFeedFetch, "feed yielded no items", nil)); err != nil {
			GetLogger().Warning("Failed to record source status for %s: %v", src.Name, err)
		}
		return nil
	}

	articles := make([]*Article, 0, len(items))
	for _, item := range items {
		article := ing.buildArticle(ctx, src, item)
		if article != nil {
			articles = append(articles, article)
		}
	}

	if err := ing.store.RecordSourceError(ctx, src.Name, nil); err != nil {
		GetLogger().Warning("Failed to record source status for %s: %v", src.Name, err)
	}
	ing.feedCache.Set(src.Name, articles)
	return articles
}

// buildArticle normalizes one feed item, fetching and extracting the full
// page when the inline feed content is insufficient
func (ing *Ingestor) buildArticle(ctx context.Context, src Source, item FeedItem) *Article {
	summary := cleanInlineContent(item.Summary)
	content := cleanInlineContent(item.Content)

	if NeedsFullFetch(src, len(summary), len(content), ing.cfg) {
		if full := ing.fetchAndExtract(ctx, item.Link, content); full != "" {
			content = full
		}
		// Persistent extraction failure still stores the article with
		// whatever inline text exists, rather than dropping it.
	}

	shortSummary := summary
	if len(shortSummary) > 500 {
		shortSummary = shortSummary[:500]
	}

	return &Article{
		Title:       item.Title,
		URL:         item.Link,
		Summary:     shortSummary,
		FullText:    content,
		Source:      src.Name,
		Category:    src.Category,
		PublishedAt: item.PublishedAt,
		FetchedAt:   time.Now().UTC(),
		Score:       -1,
	}
}

// fetchAndExtract runs the content fetcher and extraction pipeline for one
// URL; every failure degrades to an empty string
func (ing *Ingestor) fetchAndExtract(ctx context.Context, link, candidate string) string {
	rawHTML, err := ing.pages.Fetch(ctx, link)
	if err != nil {
		GetLogger().Warning("Page fetch failed for %s: %v", link, err)
		rawHTML = ""
	}
	if rawHTML == "" && candidate == "" {
		return ""
	}
	return ing.pipeline.Extract(ctx, rawHTML, link, candidate)
}

// SaveAll persists every candidate; URLs already seen are silently skipped.
// Individual failures are logged and the batch continues.
func (ing *Ingestor) SaveAll(ctx context.Context, batches map[string][]*Article) (inserted int) {
	for sourceName, articles := range batches {
		var src *Source
		for _, a := range articles {
			if a.Category == "" && src == nil {
				found, err := ing.store.GetSourceByName(ctx, sourceName)
				if err != nil {
					GetLogger().Warning("Category lookup failed for %s: %v", sourceName, err)
				}
				src = found
			}
			a.Category = categoryFor(a, src)

			created, err := ing.store.InsertArticle(ctx, a)
			if err != nil {
				GetLogger().Error("Failed to save article %s: %v", a.URL, err)
				continue
			}
			if created {
				inserted++
			}
		}
	}
	return inserted
}

// Run performs one complete ingestion pass: fetch, save, and optionally
// score relevance for the new batch
func (ing *Ingestor) Run(ctx context.Context, gen Generator) {
	batches, err := ing.FetchAll(ctx, true)
	if err != nil {
		GetLogger().Error("Fetch run failed: %v", err)
		return
	}

	inserted := ing.SaveAll(ctx, batches)
	GetLogger().Info("Ingestion stored %d new articles", inserted)

	if err := ing.store.SetSetting(ctx, "last_fetch_run", time.Now().UTC().Format(time.RFC3339)); err != nil {
		GetLogger().Warning("Failed to record fetch timestamp: %v", err)
	}

	if ing.cfg.EnableRelevance && inserted > 0 {
		if _, err := ScoreRelevance(ctx, ing.store, gen, ing.cfg); err != nil {
			GetLogger().Warning("Relevance scoring failed: %v", err)
		}
	}
}
