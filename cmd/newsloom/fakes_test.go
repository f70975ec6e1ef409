// cmd/newsloom/fakes_test.go
package main

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memStore is the in-memory Store used across the test suite
type memStore struct {
	mu sync.Mutex

	sources  map[string]*Source
	articles map[int64]*Article
	byURL    map[string]int64
	analyses map[string]*AnalysisRecord
	settings map[string]string

	nextSourceID  int64
	nextArticleID int64

	// failUpsert makes UpsertAnalysis fail, for persistence-failure paths
	failUpsert bool
}

func newMemStore() *memStore {
	return &memStore{
		sources:  make(map[string]*Source),
		articles: make(map[int64]*Article),
		byURL:    make(map[string]int64),
		analyses: make(map[string]*AnalysisRecord),
		settings: make(map[string]string),
	}
}

func analysisKey(articleID int64, scope AnalysisScope, mode AnalysisMode) string {
	return fmt.Sprintf("%d/%s/%s", articleID, scope, mode)
}

func (m *memStore) SeedSources(ctx context.Context, sources []Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, src := range sources {
		if _, exists := m.sources[src.Name]; exists {
			continue
		}
		m.nextSourceID++
		copy := src
		copy.ID = m.nextSourceID
		m.sources[src.Name] = &copy
	}
	return nil
}

func (m *memStore) ListSources(ctx context.Context, enabledOnly bool) ([]Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Source
	for _, src := range m.sources {
		if enabledOnly && !src.Enabled {
			continue
		}
		out = append(out, *src)
	}
	return out, nil
}

func (m *memStore) GetSourceByName(ctx context.Context, name string) (*Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.sources[name]
	if !ok {
		return nil, nil
	}
	copy := *src
	return &copy, nil
}

func (m *memStore) SetSourceEnabled(ctx context.Context, id int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, src := range m.sources {
		if src.ID == id {
			src.Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("source %d not found", id)
}

func (m *memStore) UpdateSourceFeedURL(ctx context.Context, id int64, feedURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, src := range m.sources {
		if src.ID == id {
			src.FeedURL = feedURL
			return nil
		}
	}
	return fmt.Errorf("source %d not found", id)
}

func (m *memStore) RecordSourceError(ctx context.Context, name string, fetchErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.sources[name]
	if !ok {
		return nil
	}
	if fetchErr == nil {
		src.LastError = ""
		src.ErrorCount = 0
	} else {
		src.LastError = fetchErr.Error()
		src.ErrorCount++
	}
	return nil
}

func (m *memStore) InsertArticle(ctx context.Context, a *Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.byURL[a.URL]; seen {
		return false, nil
	}
	m.nextArticleID++
	copy := *a
	copy.ID = m.nextArticleID
	m.articles[copy.ID] = &copy
	m.byURL[copy.URL] = copy.ID
	a.ID = copy.ID
	return true, nil
}

func (m *memStore) GetArticle(ctx context.Context, id int64) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, ErrArticleNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *memStore) UpdateArticleText(ctx context.Context, id int64, fullText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return ErrArticleNotFound
	}
	a.FullText = fullText
	return nil
}

func (m *memStore) UpdateArticleSummary(ctx context.Context, id int64, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return ErrArticleNotFound
	}
	a.Summary = summary
	return nil
}

func (m *memStore) ListUnscored(ctx context.Context, limit int) ([]*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Article
	for _, a := range m.articles {
		if a.Score >= 0 {
			continue
		}
		copy := *a
		out = append(out, &copy)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) SetRelevance(ctx context.Context, id int64, score int, reason string, hidden bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return ErrArticleNotFound
	}
	a.Score = score
	a.ScoreReason = reason
	a.Hidden = hidden
	return nil
}

func (m *memStore) GetAnalysis(ctx context.Context, articleID int64, scope AnalysisScope, mode AnalysisMode) (*AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.analyses[analysisKey(articleID, scope, mode)]
	if !ok {
		return nil, nil
	}
	copy := *rec
	return &copy, nil
}

func (m *memStore) UpsertAnalysis(ctx context.Context, rec *AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert {
		return fmt.Errorf("upsert disabled")
	}
	copy := *rec
	copy.UpdatedAt = time.Now().UTC()
	m.analyses[analysisKey(rec.ArticleID, rec.Scope, rec.Mode)] = &copy
	return nil
}

func (m *memStore) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[key], nil
}

func (m *memStore) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// testConfig returns defaults suitable for unit tests
func testConfig() *Config {
	c := DefaultConfig()
	c.AIProvider = "stub"
	return c
}
