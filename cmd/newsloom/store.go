// cmd/newsloom/store.go
package main

import "context"

// Store is the narrow persistence contract the pipeline depends on. The
// production implementation is SQLStore; tests substitute an in-memory fake.
type Store interface {
	// Sources
	SeedSources(ctx context.Context, sources []Source) error
	ListSources(ctx context.Context, enabledOnly bool) ([]Source, error)
	GetSourceByName(ctx context.Context, name string) (*Source, error)
	SetSourceEnabled(ctx context.Context, id int64, enabled bool) error
	UpdateSourceFeedURL(ctx context.Context, id int64, feedURL string) error
	RecordSourceError(ctx context.Context, name string, fetchErr error) error

	// Articles: insert-if-absent keyed by canonical URL. InsertArticle
	// reports whether a new row was created.
	InsertArticle(ctx context.Context, a *Article) (bool, error)
	GetArticle(ctx context.Context, id int64) (*Article, error)
	UpdateArticleText(ctx context.Context, id int64, fullText string) error
	UpdateArticleSummary(ctx context.Context, id int64, summary string) error
	ListUnscored(ctx context.Context, limit int) ([]*Article, error)
	SetRelevance(ctx context.Context, id int64, score int, reason string, hidden bool) error

	// Analyses: at most one row per (article, scope, mode)
	GetAnalysis(ctx context.Context, articleID int64, scope AnalysisScope, mode AnalysisMode) (*AnalysisRecord, error)
	UpsertAnalysis(ctx context.Context, rec *AnalysisRecord) error

	// Settings key/value pairs, one precedence level of configuration
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
