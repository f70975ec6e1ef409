// cmd/newsloom/analysis.go
package main

import (
	"context"
	"encoding/json"
	"strings"
)

const maxRawResponseChars = 2000

// Analyzer computes and caches AI-derived views of articles. One cached
// record exists per (article, scope, mode); staleness is controlled only by
// the force flag and by read-time vocabulary revalidation.
type Analyzer struct {
	store Store
	gen   Generator
	cfg   *Config
}

// NewAnalyzer wires the analysis cache to its collaborators
func NewAnalyzer(store Store, gen Generator, c *Config) *Analyzer {
	return &Analyzer{store: store, gen: gen, cfg: c}
}

// Analyze returns the cached analysis for (articleID, scope, mode), computing
// and persisting it on miss or when force is set. Parse failures surface as
// an error payload carrying the raw response; they never overwrite a cached
// value. Persistence failures are logged and the computed payload is still
// returned.
func (a *Analyzer) Analyze(ctx context.Context, articleID int64, scope AnalysisScope, mode AnalysisMode, force bool) (AnalysisPayload, error) {
	article, err := a.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	if !force {
		cached, err := a.store.GetAnalysis(ctx, articleID, scope, mode)
		if err != nil {
			GetLogger().Warning("Analysis cache read failed for article %d: %v", articleID, err)
		} else if cached != nil {
			payload, err := cached.Payload()
			if err == nil {
				return a.viewPayload(payload, scope, article), nil
			}
			// Corrupted cache entry: ignore and recompute
			GetLogger().Warning("Discarding corrupted cached analysis for article %d/%s/%s: %v",
				articleID, scope, mode, err)
		}
	}

	return a.compute(ctx, article, scope, mode)
}

// viewPayload applies read-time views to a cached payload. Vocabulary terms
// are revalidated against the current article text so hallucinated terms
// cannot survive in responses indefinitely; the stored record is untouched.
func (a *Analyzer) viewPayload(payload AnalysisPayload, scope AnalysisScope, article *Article) AnalysisPayload {
	payload["scope"] = string(scope)
	if scope != ScopeVocabulary {
		return payload
	}

	entries, ok := payload["vocabulary"].([]interface{})
	if !ok {
		return payload
	}

	viewed := make(AnalysisPayload, len(payload))
	for k, v := range payload {
		viewed[k] = v
	}
	viewed["vocabulary"] = filterVocabulary(entries, article.FullText+"\n"+article.Title)
	return viewed
}

func (a *Analyzer) compute(ctx context.Context, article *Article, scope AnalysisScope, mode AnalysisMode) (AnalysisPayload, error) {
	content := article.FullText
	if strings.TrimSpace(content) == "" {
		content = article.Summary
	}

	system, prompt, err := buildPrompt(scope, mode, article.Title, content, a.cfg.MaxAnalysisChars)
	if err != nil {
		return nil, NewAIError(ErrAIRequest, "prompt construction failed", err)
	}

	response, err := a.gen.Generate(ctx, GenerateRequest{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   a.cfg.AIMaxTokens,
		Temperature: a.cfg.AITemperature,
	})
	if err != nil {
		// No lower-fidelity fallback exists for analysis; surface an
		// explicit error payload and leave any cached value alone.
		return AnalysisPayload{
			"scope": string(scope),
			"error": "analysis failed: " + err.Error(),
		}, nil
	}

	payload, ok := extractJSON(response)
	if !ok {
		raw := response
		if len(raw) > maxRawResponseChars {
			raw = raw[:maxRawResponseChars]
		}
		return AnalysisPayload{
			"scope":        string(scope),
			"error":        "error parsing AI response",
			"raw_response": raw,
		}, nil
	}

	// Pre-write hallucination guard: terms absent from the source text are
	// dropped before the record is persisted.
	if scope == ScopeVocabulary {
		if entries, ok := payload["vocabulary"].([]interface{}); ok {
			payload["vocabulary"] = filterVocabulary(entries, article.FullText+"\n"+article.Title)
		}
	}
	payload["scope"] = string(scope)

	a.persist(ctx, article, scope, mode, payload)
	return payload, nil
}

// persist writes the cache entry and the summary denormalization. Failures
// here are logged, never returned: the computed result must reach the caller
// even when it could not be cached.
func (a *Analyzer) persist(ctx context.Context, article *Article, scope AnalysisScope, mode AnalysisMode, payload AnalysisPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		GetLogger().Error("Failed to encode analysis for article %d: %v", article.ID, err)
		return
	}

	rec := &AnalysisRecord{
		ArticleID: article.ID,
		Scope:     scope,
		Mode:      mode,
		Content:   data,
		ModelUsed: a.cfg.AIModel,
	}
	if err := a.store.UpsertAnalysis(ctx, rec); err != nil {
		GetLogger().Error("Failed to persist analysis for article %d/%s/%s: %v",
			article.ID, scope, mode, err)
	}

	if scope == ScopeSummary {
		if summary, ok := payload["summary"].(string); ok && summary != "" {
			if err := a.store.UpdateArticleSummary(ctx, article.ID, summary); err != nil {
				GetLogger().Error("Failed to denormalize summary for article %d: %v", article.ID, err)
			}
		}
	}
}

// extractJSON parses model output into a JSON object using a tolerant
// strategy chain: direct parse, markdown-fence stripping, then the substring
// between the first '{' and the last '}'
func extractJSON(response string) (AnalysisPayload, bool) {
	trimmed := strings.TrimSpace(response)

	var payload AnalysisPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
		return payload, true
	}

	cleaned := trimmed
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		return payload, true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err == nil {
			return payload, true
		}
	}

	return nil, false
}
