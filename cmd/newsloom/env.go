// cmd/newsloom/env.go
package main

import (
	"os"
	"strconv"
)

// GetEnvString gets a string from environment variables with a default value
func GetEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer from environment variables with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean from environment variables with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetEnvFloat gets a float64 from environment variables with a default value
func GetEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// LoadEnvConfig loads configuration from environment variables layered over
// the hard-coded defaults
func LoadEnvConfig() *Config {
	d := DefaultConfig()
	return &Config{
		Version:               GetEnvString("NEWSLOOM_VERSION", d.Version),
		DatabaseDSN:           GetEnvString("DATABASE_DSN", d.DatabaseDSN),
		AIProvider:            GetEnvString("AI_PROVIDER", d.AIProvider),
		AIModel:               GetEnvString("AI_MODEL", d.AIModel),
		AIAPIKey:              GetEnvString("AI_API_KEY", d.AIAPIKey),
		AIBaseURL:             GetEnvString("AI_BASE_URL", d.AIBaseURL),
		AIMaxTokens:           GetEnvInt("AI_MAX_TOKENS", d.AIMaxTokens),
		AITemperature:         float32(GetEnvFloat("AI_TEMPERATURE", float64(d.AITemperature))),
		AIRatePerMin:          GetEnvInt("AI_RATE_PER_MIN", d.AIRatePerMin),
		SourcesPath:           GetEnvString("SOURCES_PATH", d.SourcesPath),
		FetchCron:             GetEnvString("FETCH_CRON", d.FetchCron),
		FetchConcurrency:      GetEnvInt("FETCH_CONCURRENCY", d.FetchConcurrency),
		MaxItemsPerSource:     GetEnvInt("MAX_ITEMS_PER_SOURCE", d.MaxItemsPerSource),
		MinFetchIntervalMins:  GetEnvInt("MIN_FETCH_INTERVAL_MINUTES", d.MinFetchIntervalMins),
		UserAgent:             GetEnvString("USER_AGENT", d.UserAgent),
		MinInlineContentChars: GetEnvInt("MIN_INLINE_CONTENT_CHARS", d.MinInlineContentChars),
		MinExtractChars:       GetEnvInt("MIN_EXTRACT_CHARS", d.MinExtractChars),
		ContentSummaryRatio:   GetEnvFloat("CONTENT_SUMMARY_RATIO", d.ContentSummaryRatio),
		MaxRefineHTMLChars:    GetEnvInt("MAX_REFINE_HTML_CHARS", d.MaxRefineHTMLChars),
		MaxAnalysisChars:      GetEnvInt("MAX_ANALYSIS_CHARS", d.MaxAnalysisChars),
		EnableRelevance:       GetEnvBool("ENABLE_RELEVANCE", d.EnableRelevance),
		RelevanceBatchSize:    GetEnvInt("RELEVANCE_BATCH_SIZE", d.RelevanceBatchSize),
		HideBelowScore:        GetEnvInt("HIDE_BELOW_SCORE", d.HideBelowScore),
		HealthPort:            GetEnvInt("HEALTH_PORT", d.HealthPort),
		LogPath:               GetEnvString("LOG_PATH", d.LogPath),
		LogLevel:              GetEnvString("LOG_LEVEL", d.LogLevel),
	}
}
