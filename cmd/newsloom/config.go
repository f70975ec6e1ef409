// cmd/newsloom/config.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Extraction and analysis thresholds. These values come straight from the
// production deployment; treat them as tunables, not derived quantities.
const (
	// Inline feed content shorter than this always triggers a full page fetch
	DefaultMinInlineContentChars = 2000

	// An extraction stage's output shorter than this is insufficient
	DefaultMinExtractChars = 300

	// Inline content must exceed the inline summary by this factor to be
	// trusted as a real article body
	DefaultContentSummaryRatio = 1.5

	// Hard cap on the pre-cleaned HTML fragment sent for AI refinement
	DefaultMaxRefineHTMLChars = 30000

	// Hard cap on article text included in analysis prompts
	DefaultMaxAnalysisChars = 20000

	// Most recent feed entries considered per source
	DefaultMaxItemsPerSource = 10

	// Fan-out ceiling for concurrent source fetches
	DefaultFetchConcurrency = 5
)

// Network timeouts per call class
const (
	DefaultFeedTimeout  = 10 * time.Second
	DefaultPageTimeout  = 30 * time.Second
	DefaultAITimeout    = 300 * time.Second
	DefaultQueryTimeout = 10 * time.Second
)

// Config holds application configuration. Precedence for every value is:
// explicit function argument > config file > environment > hard-coded default.
type Config struct {
	Version string `json:"version"`

	// Storage
	DatabaseDSN string `json:"database_dsn"`

	// AI generation backend: "openai" (any OpenAI-compatible endpoint via
	// AIBaseURL) or "stub" for the deterministic echo backend
	AIProvider    string  `json:"ai_provider"`
	AIModel       string  `json:"ai_model"`
	AIAPIKey      string  `json:"ai_api_key"`
	AIBaseURL     string  `json:"ai_base_url"`
	AIMaxTokens   int     `json:"ai_max_tokens"`
	AITemperature float32 `json:"ai_temperature"`
	AIRatePerMin  int     `json:"ai_rate_per_min"`

	// Ingestion
	SourcesPath          string `json:"sources_path"`
	FetchCron            string `json:"fetch_cron"`
	FetchConcurrency     int    `json:"fetch_concurrency"`
	MaxItemsPerSource    int    `json:"max_items_per_source"`
	MinFetchIntervalMins int    `json:"min_fetch_interval_minutes"`
	UserAgent            string `json:"user_agent"`

	// Extraction thresholds
	MinInlineContentChars int     `json:"min_inline_content_chars"`
	MinExtractChars       int     `json:"min_extract_chars"`
	ContentSummaryRatio   float64 `json:"content_summary_ratio"`
	MaxRefineHTMLChars    int     `json:"max_refine_html_chars"`
	MaxAnalysisChars      int     `json:"max_analysis_chars"`

	// Relevance scoring
	EnableRelevance    bool `json:"enable_relevance"`
	RelevanceBatchSize int  `json:"relevance_batch_size"`
	HideBelowScore     int  `json:"hide_below_score"`

	// Ops
	HealthPort int    `json:"health_port"`
	LogPath    string `json:"log_path"`
	LogLevel   string `json:"log_level"`
}

// Global configuration, set once at startup and swapped by the config manager
var cfg *Config

// DefaultConfig returns the hard-coded defaults, the lowest precedence level
func DefaultConfig() *Config {
	return &Config{
		Version:               "1.0.0",
		AIProvider:            "openai",
		AIModel:               "gpt-4o-mini",
		AIMaxTokens:           4000,
		AITemperature:         0.2,
		AIRatePerMin:          30,
		FetchCron:             "@every 30m",
		FetchConcurrency:      DefaultFetchConcurrency,
		MaxItemsPerSource:     DefaultMaxItemsPerSource,
		MinFetchIntervalMins:  15,
		UserAgent:             browserUserAgent,
		MinInlineContentChars: DefaultMinInlineContentChars,
		MinExtractChars:       DefaultMinExtractChars,
		ContentSummaryRatio:   DefaultContentSummaryRatio,
		MaxRefineHTMLChars:    DefaultMaxRefineHTMLChars,
		MaxAnalysisChars:      DefaultMaxAnalysisChars,
		EnableRelevance:       false,
		RelevanceBatchSize:    20,
		HideBelowScore:        3,
		HealthPort:            8081,
		LogPath:               "data/logs/newsloom.log",
		LogLevel:              "info",
	}
}

// LoadConfig builds the effective configuration from the config file layered
// over environment variables and defaults
func LoadConfig(path string) (*Config, error) {
	c := LoadEnvConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, NewConfigError(ErrConfigLoad, "failed to read config file", err)
			}
			// Missing file is fine; env + defaults apply
		} else if err := json.Unmarshal(data, c); err != nil {
			return nil, NewConfigError(ErrConfigLoad, "invalid config file", err)
		}
	}

	if err := ValidateConfig(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyStoredSettings overlays operator-set values from the settings table
// onto the loaded config. Stored settings rank above the config file but
// below explicit arguments; unknown or malformed values are ignored.
func ApplyStoredSettings(ctx context.Context, store Store, c *Config) {
	if v, err := store.GetSetting(ctx, "fetch_cron"); err == nil && v != "" {
		c.FetchCron = v
	}
	if v, err := store.GetSetting(ctx, "hide_below_score"); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HideBelowScore = n
		}
	}
	if v, err := store.GetSetting(ctx, "enable_relevance"); err == nil && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableRelevance = b
		}
	}
}

// ValidateConfig checks invariants that would otherwise fail far from startup
func ValidateConfig(c *Config) error {
	if c.AIProvider != "openai" && c.AIProvider != "stub" {
		return NewConfigError(ErrConfigValidation,
			fmt.Sprintf("unknown ai_provider %q", c.AIProvider), nil)
	}
	if c.AIProvider == "openai" && c.AIAPIKey == "" && c.AIBaseURL == "" {
		return NewConfigError(ErrConfigValidation, "ai_api_key is required for the openai provider", nil)
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = DefaultFetchConcurrency
	}
	if c.MaxItemsPerSource <= 0 {
		c.MaxItemsPerSource = DefaultMaxItemsPerSource
	}
	if c.MinExtractChars <= 0 {
		c.MinExtractChars = DefaultMinExtractChars
	}
	if c.MinInlineContentChars <= 0 {
		c.MinInlineContentChars = DefaultMinInlineContentChars
	}
	if c.ContentSummaryRatio <= 1 {
		c.ContentSummaryRatio = DefaultContentSummaryRatio
	}
	if c.MaxRefineHTMLChars <= 0 {
		c.MaxRefineHTMLChars = DefaultMaxRefineHTMLChars
	}
	if c.MaxAnalysisChars <= 0 {
		c.MaxAnalysisChars = DefaultMaxAnalysisChars
	}
	return nil
}
