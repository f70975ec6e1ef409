// cmd/newsloom/sources.go
package main

import (
	"context"
	"os"

	"gopkg.in/yaml.v2"
)

// defaultSources is the compiled-in catalog. Rows are seeded once; runtime
// state (enabled, feed repairs, error counters) lives in the database.
// Sources without a feed URL are registered but contribute no items until
// a feed URL is repaired in.
var defaultSources = []Source{
	{Name: "OpenAI", URL: "https://openai.com/news", FeedURL: "https://openai.com/news/rss.xml", Category: "research", Enabled: true},
	{Name: "DeepMind", URL: "https://deepmind.google/blog", Category: "research", Enabled: true},
	{Name: "Google Research", URL: "https://research.google/blog", FeedURL: "https://research.google/blog/feed/", Category: "research", Enabled: true},
	{Name: "Meta AI", URL: "https://ai.meta.com/blog", FeedURL: "https://ai.meta.com/blog/rss/", Category: "research", Enabled: true},
	{Name: "Microsoft Research", URL: "https://www.microsoft.com/research/blog/", FeedURL: "https://www.microsoft.com/research/feed/", Category: "research", Enabled: true},
	{Name: "NVIDIA AI Blog", URL: "https://blogs.nvidia.com/tag/ai/", FeedURL: "https://blogs.nvidia.com/tag/ai/feed/", Category: "research", Enabled: true},
	{Name: "Anthropic", URL: "https://www.anthropic.com/news", Category: "research", Enabled: true},
	{Name: "Hugging Face", URL: "https://huggingface.co/blog", Category: "research", Enabled: true},
	{Name: "arXiv cs.AI", URL: "https://arxiv.org/list/cs.AI/recent", FeedURL: "https://arxiv.org/rss/cs.AI", Category: "academic", Enabled: true, TruncatedFeed: true},
	{Name: "arXiv cs.CL", URL: "https://arxiv.org/list/cs.CL/recent", FeedURL: "https://arxiv.org/rss/cs.CL", Category: "academic", Enabled: true, TruncatedFeed: true},
	{Name: "MIT CSAIL", URL: "https://www.csail.mit.edu/news", FeedURL: "https://www.csail.mit.edu/rss/news", Category: "academic", Enabled: true},
	{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/", FeedURL: "https://venturebeat.com/category/ai/feed/", Category: "media", Enabled: true, TruncatedFeed: true},
	{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/", FeedURL: "https://techcrunch.com/category/artificial-intelligence/feed/", Category: "media", Enabled: true, TruncatedFeed: true},
	{Name: "The Verge AI", URL: "https://www.theverge.com/artificial-intelligence", FeedURL: "https://www.theverge.com/rss/artificial-intelligence/index.xml", Category: "media", Enabled: true},
	{Name: "Wired AI", URL: "https://www.wired.com/tag/artificial-intelligence/", FeedURL: "https://www.wired.com/feed/tag/ai/latest/rss", Category: "media", Enabled: true, TruncatedFeed: true},
	{Name: "MIT Tech Review AI", URL: "https://www.technologyreview.com/topic/artificial-intelligence/", FeedURL: "https://www.technologyreview.com/topic/artificial-intelligence/feed/", Category: "media", Enabled: true},
	{Name: "AI News", URL: "https://www.artificialintelligence-news.com/", FeedURL: "https://www.artificialintelligence-news.com/feed/", Category: "media", Enabled: true},
	{Name: "KDnuggets", URL: "https://www.kdnuggets.com/news/index.html", FeedURL: "https://www.kdnuggets.com/feed", Category: "blog", Enabled: true},
	{Name: "Marktechpost", URL: "https://www.marktechpost.com/category/ai/", FeedURL: "https://www.marktechpost.com/feed/", Category: "blog", Enabled: true},
	{Name: "ScienceDaily AI", URL: "https://www.sciencedaily.com/news/computers_math/artificial_intelligence/", FeedURL: "https://www.sciencedaily.com/rss/computers_math/artificial_intelligence.xml", Category: "science", Enabled: true},
	{Name: "IEEE Spectrum AI", URL: "https://spectrum.ieee.org/artificial-intelligence", FeedURL: "https://spectrum.ieee.org/feeds/artificial-intelligence.rss", Category: "science", Enabled: true},
}

// sourcesFile is the YAML shape of an operator-provided catalog override
type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSourceCatalog returns the seed catalog, preferring the YAML override
// file when one is configured and readable
func LoadSourceCatalog(path string) ([]Source, error) {
	if path == "" {
		return defaultSources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSources, nil
		}
		return nil, NewConfigError(ErrConfigLoad, "failed to read sources file", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, NewConfigError(ErrConfigLoad, "invalid sources file", err)
	}
	if len(f.Sources) == 0 {
		return defaultSources, nil
	}
	return f.Sources, nil
}

// SeedSourceRegistry loads the catalog and seeds any missing rows
func SeedSourceRegistry(ctx context.Context, store Store, path string) error {
	catalog, err := LoadSourceCatalog(path)
	if err != nil {
		return err
	}
	if err := store.SeedSources(ctx, catalog); err != nil {
		return err
	}
	GetLogger().Info("Source registry seeded with %d catalog entries", len(catalog))
	return nil
}

// toggleSource flips a source's enabled flag by name
func toggleSource(ctx context.Context, store Store, name string, enabled bool) error {
	src, err := store.GetSourceByName(ctx, name)
	if err != nil {
		return err
	}
	if src == nil {
		return NewConfigError(ErrConfigValidation, "unknown source "+name, nil)
	}
	return store.SetSourceEnabled(ctx, src.ID, enabled)
}

// repairFeed points a source at a corrected feed URL
func repairFeed(ctx context.Context, store Store, name, feedURL string) error {
	src, err := store.GetSourceByName(ctx, name)
	if err != nil {
		return err
	}
	if src == nil {
		return NewConfigError(ErrConfigValidation, "unknown source "+name, nil)
	}
	return store.UpdateSourceFeedURL(ctx, src.ID, feedURL)
}

// categoryFor resolves an article's category, falling back to the source's
func categoryFor(article *Article, src *Source) string {
	if article.Category != "" {
		return article.Category
	}
	if src != nil {
		return src.Category
	}
	return ""
}
