// cmd/newsloom/relevance.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// relevanceSystemPrompt frames the batch scoring call. Scores run 1-10;
// anything below the configured floor is hidden from default listings.
const relevanceSystemPrompt = "You are a news curator for a technology-focused audience. " +
	"You rate articles for relevance to software engineering, AI, security, and the tech industry. " +
	"You respond with JSON only, no commentary."

const relevanceContract = `Rate each article below from 1 to 10 for relevance to a technology
audience. 10 means essential industry news, 1 means off-topic filler
such as celebrity gossip, sports, or pure lifestyle content.

Respond with a single JSON object mapping each article id (as a string)
to an object with two keys: "score" (integer 1-10) and "reason" (one
short sentence). Example:

{"42": {"score": 8, "reason": "Major LLM release from a top lab."}}

Articles:
`

// relevanceVerdict is one entry of the model's batch response.
type relevanceVerdict struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// ScoreRelevance scores a batch of not-yet-rated articles in a single
// model call and persists the results. Articles the model skips keep
// their unscored state and are retried on the next pass. Returns the
// number of articles scored.
func ScoreRelevance(ctx context.Context, store Store, gen Generator, c *Config) (int, error) {
	articles, err := store.ListUnscored(ctx, c.RelevanceBatchSize)
	if err != nil {
		return 0, NewDatabaseError(ErrDatabaseQuery, "listing unscored articles", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(relevanceContract)
	for _, a := range articles {
		summary := a.Summary
		if len(summary) > 300 {
			summary = summary[:300]
		}
		fmt.Fprintf(&sb, "\n[%d] %s (%s)\n%s\n", a.ID, a.Title, a.Source, summary)
	}

	resp, err := gen.Generate(ctx, GenerateRequest{
		System:      relevanceSystemPrompt,
		Prompt:      sb.String(),
		MaxTokens:   c.AIMaxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		return 0, err
	}

	verdicts, err := parseRelevanceResponse(resp)
	if err != nil {
		return 0, err
	}

	scored := 0
	for _, a := range articles {
		v, ok := verdicts[a.ID]
		if !ok {
			continue
		}
		if v.Score < 1 {
			v.Score = 1
		} else if v.Score > 10 {
			v.Score = 10
		}
		hidden := v.Score < c.HideBelowScore
		if err := store.SetRelevance(ctx, a.ID, v.Score, v.Reason, hidden); err != nil {
			GetLogger().Warning("Failed to store relevance for article %d: %v", a.ID, err)
			continue
		}
		scored++
	}

	GetLogger().Info("Relevance pass scored %d/%d articles", scored, len(articles))
	return scored, nil
}

func parseRelevanceResponse(resp string) (map[int64]relevanceVerdict, error) {
	payload, ok := extractJSON(resp)
	if !ok {
		return nil, NewAIError(ErrAIResponse, "relevance response is not valid JSON", nil)
	}

	verdicts := make(map[int64]relevanceVerdict, len(payload))
	for key, raw := range payload {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		blob, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		var v relevanceVerdict
		if err := json.Unmarshal(blob, &v); err != nil || v.Score == 0 {
			continue
		}
		verdicts[id] = v
	}
	if len(verdicts) == 0 {
		return nil, NewAIError(ErrAIResponse, "relevance response contained no usable verdicts", nil)
	}
	return verdicts, nil
}
