// cmd/newsloom/types.go
package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// Source represents a configured news source
type Source struct {
	ID            int64     `db:"id" json:"id" yaml:"id"`
	Name          string    `db:"name" json:"name" yaml:"name"`
	URL           string    `db:"url" json:"url" yaml:"url"`
	FeedURL       string    `db:"feed_url" json:"feed_url" yaml:"feedUrl"`
	Category      string    `db:"category" json:"category" yaml:"category"`
	Enabled       bool      `db:"enabled" json:"enabled" yaml:"enabled"`
	TruncatedFeed bool      `db:"truncated_feed" json:"truncated_feed" yaml:"truncatedFeed"`
	LastError     string    `db:"last_error" json:"last_error,omitempty" yaml:"-"`
	ErrorCount    int       `db:"error_count" json:"error_count" yaml:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// Article represents a stored, extracted article
type Article struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	URL         string    `db:"url" json:"url"`
	Summary     string    `db:"summary" json:"summary"`
	FullText    string    `db:"content" json:"content"`
	Source      string    `db:"source" json:"source"`
	Category    string    `db:"category" json:"category"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`
	Score       int       `db:"ai_score" json:"ai_score"`
	ScoreReason string    `db:"ai_reason" json:"ai_reason,omitempty"`
	Hidden      bool      `db:"hidden" json:"hidden"`
}

// FeedItem is one candidate entry produced by the feed reader
type FeedItem struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Summary     string
	Content     string
}

// FetchResult carries the outcome of a single source fetch
type FetchResult struct {
	Source    string
	Articles  []*Article
	Err       error
	FetchTime time.Time
}

// AnalysisScope identifies the kind of derived view of an article
type AnalysisScope string

const (
	ScopeSummary    AnalysisScope = "summary"
	ScopeStructure  AnalysisScope = "structure"
	ScopeVocabulary AnalysisScope = "vocabulary"
)

// ParseScope validates a scope string against the closed set
func ParseScope(s string) (AnalysisScope, error) {
	switch AnalysisScope(s) {
	case ScopeSummary, ScopeStructure, ScopeVocabulary:
		return AnalysisScope(s), nil
	}
	return "", fmt.Errorf("invalid analysis scope %q", s)
}

// AnalysisMode identifies the target audience of an analysis
type AnalysisMode string

const (
	ModeLearner AnalysisMode = "english_learner"
	ModeAnalyst AnalysisMode = "tech_analyst"
)

// ParseMode validates a mode string against the closed set
func ParseMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(s) {
	case ModeLearner, ModeAnalyst:
		return AnalysisMode(s), nil
	}
	return "", fmt.Errorf("invalid analysis mode %q", s)
}

// AnalysisPayload is the structured result of one analysis request
type AnalysisPayload map[string]interface{}

// IsError reports whether the payload carries an error instead of a result
func (p AnalysisPayload) IsError() bool {
	_, ok := p["error"]
	return ok
}

// AnalysisRecord is one cached analysis keyed by (article, scope, mode)
type AnalysisRecord struct {
	ArticleID int64           `db:"news_id"`
	Scope     AnalysisScope   `db:"scope"`
	Mode      AnalysisMode    `db:"mode"`
	Content   json.RawMessage `db:"content"`
	ModelUsed string          `db:"model_used"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Payload decodes the stored JSON content
func (r *AnalysisRecord) Payload() (AnalysisPayload, error) {
	var p AnalysisPayload
	if err := json.Unmarshal(r.Content, &p); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return p, nil
}

// VocabularyEntry is one term in a vocabulary payload
type VocabularyEntry struct {
	Term          string `json:"term"`
	Pronunciation string `json:"pronunciation"`
	Definition    string `json:"definition"`
	Example       string `json:"example"`
}
