// cmd/newsloom/database.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Database tables
const (
	createSourcesTable = `
	CREATE TABLE IF NOT EXISTS news_sources (
		id             SERIAL PRIMARY KEY,
		name           TEXT NOT NULL UNIQUE,
		url            TEXT NOT NULL,
		feed_url       TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		enabled        BOOLEAN NOT NULL DEFAULT TRUE,
		truncated_feed BOOLEAN NOT NULL DEFAULT FALSE,
		last_error     TEXT NOT NULL DEFAULT '',
		error_count    INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createNewsTable = `
	CREATE TABLE IF NOT EXISTS news (
		id           SERIAL PRIMARY KEY,
		title        TEXT NOT NULL,
		url          TEXT NOT NULL UNIQUE,
		summary      TEXT NOT NULL DEFAULT '',
		content      TEXT NOT NULL DEFAULT '',
		source       TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMP NOT NULL,
		fetched_at   TIMESTAMP NOT NULL,
		ai_score     INTEGER NOT NULL DEFAULT -1,
		ai_reason    TEXT NOT NULL DEFAULT '',
		hidden       BOOLEAN NOT NULL DEFAULT FALSE
	)`

	createAnalysisTable = `
	CREATE TABLE IF NOT EXISTS article_analysis (
		news_id    INTEGER NOT NULL REFERENCES news(id),
		scope      TEXT NOT NULL,
		mode       TEXT NOT NULL,
		content    TEXT NOT NULL,
		model_used TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (news_id, scope, mode)
	)`

	createSettingsTable = `
	CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
)

// SQLStore is the Postgres-backed Store implementation
type SQLStore struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// OpenDatabase connects, applies the schema, and returns the store
func OpenDatabase(dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, NewDatabaseError(ErrDatabaseConnection, "failed to connect to database", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLStore{db: db, queryTimeout: DefaultQueryTimeout}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity for health checks
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	queries := []string{
		createSourcesTable,
		createNewsTable,
		createAnalysisTable,
		createSettingsTable,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to begin schema transaction", err)
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			tx.Rollback()
			return NewDatabaseError(ErrDatabaseQuery, "failed to execute schema query", err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// SeedSources inserts catalog entries, leaving existing rows untouched so
// operator toggles survive restarts
func (s *SQLStore) SeedSources(ctx context.Context, sources []Source) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO news_sources (name, url, feed_url, category, enabled, truncated_feed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
	`

	for _, src := range sources {
		if _, err := s.db.ExecContext(ctx, query,
			src.Name, src.URL, src.FeedURL, src.Category, src.Enabled, src.TruncatedFeed,
		); err != nil {
			return NewDatabaseError(ErrDatabaseQuery, fmt.Sprintf("failed to seed source %s", src.Name), err)
		}
	}
	return nil
}

// ListSources returns the source registry, optionally filtered to enabled rows
func (s *SQLStore) ListSources(ctx context.Context, enabledOnly bool) ([]Source, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT * FROM news_sources ORDER BY id`
	if enabledOnly {
		query = `SELECT * FROM news_sources WHERE enabled ORDER BY id`
	}

	var sources []Source
	if err := s.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, NewDatabaseError(ErrDatabaseQuery, "failed to list sources", err)
	}
	return sources, nil
}

// GetSourceByName looks up a single source row
func (s *SQLStore) GetSourceByName(ctx context.Context, name string) (*Source, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var src Source
	err := s.db.GetContext(ctx, &src, `SELECT * FROM news_sources WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, NewDatabaseError(ErrDatabaseQuery, "failed to get source", err)
	}
	return &src, nil
}

// SetSourceEnabled toggles a source on or off
func (s *SQLStore) SetSourceEnabled(ctx context.Context, id int64, enabled bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `UPDATE news_sources SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to toggle source", err)
	}
	return nil
}

// UpdateSourceFeedURL repairs a source's feed URL
func (s *SQLStore) UpdateSourceFeedURL(ctx context.Context, id int64, feedURL string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `UPDATE news_sources SET feed_url = $1 WHERE id = $2`, feedURL, id)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to update feed URL", err)
	}
	return nil
}

// RecordSourceError updates per-source error bookkeeping after a fetch run
func (s *SQLStore) RecordSourceError(ctx context.Context, name string, fetchErr error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var err error
	if fetchErr != nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE news_sources SET last_error = $1, error_count = error_count + 1 WHERE name = $2`,
			fetchErr.Error(), name)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE news_sources SET last_error = '', error_count = 0 WHERE name = $1`, name)
	}
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to record source status", err)
	}
	return nil
}

// InsertArticle inserts a new article, silently skipping URLs already seen.
// The unique constraint on url is the sole dedup mechanism, including for
// races between concurrent source fetches that discover the same link.
func (s *SQLStore) InsertArticle(ctx context.Context, a *Article) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO news (title, url, summary, content, source, category, published_at, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		a.Title, a.URL, a.Summary, a.FullText, a.Source, a.Category, a.PublishedAt, a.FetchedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, NewDatabaseError(ErrDatabaseQuery, "failed to insert article", err)
	}

	a.ID = id
	return true, nil
}

// GetArticle fetches one article row by id
func (s *SQLStore) GetArticle(ctx context.Context, id int64) (*Article, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var a Article
	err := s.db.GetContext(ctx, &a, `SELECT * FROM news WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, NewDatabaseError(ErrDatabaseQuery, "failed to get article", err)
	}
	return &a, nil
}

// UpdateArticleText overwrites an article's extracted text (refetch repair)
func (s *SQLStore) UpdateArticleText(ctx context.Context, id int64, fullText string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `UPDATE news SET content = $1 WHERE id = $2`, fullText, id)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to update article text", err)
	}
	return nil
}

// UpdateArticleSummary writes the denormalized list-view summary
func (s *SQLStore) UpdateArticleSummary(ctx context.Context, id int64, summary string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `UPDATE news SET summary = $1 WHERE id = $2`, summary, id)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to update article summary", err)
	}
	return nil
}

// ListUnscored returns visible articles awaiting relevance scoring
func (s *SQLStore) ListUnscored(ctx context.Context, limit int) ([]*Article, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var articles []*Article
	query := `
		SELECT * FROM news
		WHERE ai_score < 0 AND NOT hidden
		ORDER BY published_at DESC
		LIMIT $1
	`
	if err := s.db.SelectContext(ctx, &articles, query, limit); err != nil {
		return nil, NewDatabaseError(ErrDatabaseQuery, "failed to list unscored articles", err)
	}
	return articles, nil
}

// SetRelevance records a relevance score and optional hide flag
func (s *SQLStore) SetRelevance(ctx context.Context, id int64, score int, reason string, hidden bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE news SET ai_score = $1, ai_reason = $2, hidden = $3 WHERE id = $4`,
		score, reason, hidden, id)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to set relevance", err)
	}
	return nil
}

// GetAnalysis reads the cached analysis for (article, scope, mode), nil on miss
func (s *SQLStore) GetAnalysis(ctx context.Context, articleID int64, scope AnalysisScope, mode AnalysisMode) (*AnalysisRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rec AnalysisRecord
	var content string
	row := s.db.QueryRowContext(ctx,
		`SELECT news_id, scope, mode, content, model_used, updated_at
		 FROM article_analysis WHERE news_id = $1 AND scope = $2 AND mode = $3`,
		articleID, scope, mode)
	err := row.Scan(&rec.ArticleID, &rec.Scope, &rec.Mode, &content, &rec.ModelUsed, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, NewDatabaseError(ErrDatabaseQuery, "failed to get analysis", err)
	}

	rec.Content = json.RawMessage(content)
	return &rec, nil
}

// UpsertAnalysis writes a cache entry, replacing any previous value for the key
func (s *SQLStore) UpsertAnalysis(ctx context.Context, rec *AnalysisRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO article_analysis (news_id, scope, mode, content, model_used, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (news_id, scope, mode) DO UPDATE SET
			content = EXCLUDED.content,
			model_used = EXCLUDED.model_used,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ArticleID, rec.Scope, rec.Mode, string(rec.Content), rec.ModelUsed)
	if err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to upsert analysis", err)
	}
	return nil
}

// GetSetting reads one settings row, empty string when absent
func (s *SQLStore) GetSetting(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", NewDatabaseError(ErrDatabaseQuery, "failed to get setting", err)
	}
	return value, nil
}

// SetSetting upserts one settings row
func (s *SQLStore) SetSetting(ctx context.Context, key, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return NewDatabaseError(ErrDatabaseQuery, "failed to set setting", err)
	}
	return nil
}
