// cmd/newsloom/prompts.go
package main

import (
	"fmt"
	"strings"
)

// Prompt templates per (mode, scope). Templates take the article title and
// truncated content via buildPrompt. All of them demand bare JSON output;
// the tolerant parser in analysis.go copes with models that wrap it anyway.

const summaryPromptLearner = `You are an expert news mentor for English learners.

Article Title: %s
Article Content:
%s

Provide JSON:
{
  "summary": "3-4 sentence concise summary in English that covers the main event, critical facts, and implications."
}

Requirements:
- Use clear, modern English (max 120 words).
- Mention key entities, figures, and outcomes.
- Ignore any navigational text, ads, or metadata that might have slipped into the content.
- Return ONLY valid JSON with double quotes and no markdown fences.`

const summaryPromptAnalyst = `You are a senior technology analyst providing executive briefings.

Article Title: %s
Article Content:
%s

Provide JSON:
{
  "summary": "Executive summary focusing on technical innovation, market impact, and strategic implications."
}

Requirements:
- Focus on the 'So What?': why does this technology or event matter to the industry?
- Highlight specific technologies, companies, and market shifts.
- Use professional, concise language suitable for a tech briefing (max 150 words).
- Return ONLY valid JSON with double quotes and no markdown fences.`

const structurePromptLearner = `You are an expert content strategist creating a clear, hierarchical mind map of the article.

Article Title: %s
Article Content:
%s

Return JSON:
{
  "structure": {
    "root": {
      "id": "root",
      "label": "The Central Theme",
      "type": "conclusion",
      "summary": "A single sentence summarizing the core message of the entire article.",
      "children": [
        {
          "id": "SEC1",
          "label": "Main Point 1",
          "type": "argument",
          "summary": "The first key takeaway or major section.",
          "children": []
        }
      ]
    },
    "takeaways": ["Insight 1: why this matters", "Insight 2: future outlook"]
  }
}

Requirements:
1. Create a clear hierarchy (Root -> 3-5 Main Points -> 2-3 Details each), max depth 3.
2. "label" is concise (2-6 words); "summary" is clear, natural English (10-25 words).
3. "type" is "conclusion" for the root, "argument" for main points, "evidence", "logic", or "insight" for details.
4. Provide 2-3 synthesized insights in "takeaways".
5. Return ONLY valid JSON. No markdown, no comments.`

const structurePromptAnalyst = `You are a systems architect creating a structured breakdown of a technical article.

Article Title: %s
Article Content:
%s

Return JSON:
{
  "structure": {
    "root": {
      "id": "root",
      "label": "Core Tech/Concept",
      "type": "conclusion",
      "summary": "The main technology or strategic thesis of the article.",
      "children": [
        {
          "id": "COMP1",
          "label": "Key Component / Driver",
          "type": "argument",
          "summary": "A major part of the system or market force.",
          "children": []
        }
      ]
    },
    "takeaways": ["Critical technical insight 1", "Market implication 2"]
  }
}

Requirements:
1. Organize as Problem -> Solution -> Details or Technology -> Features -> Impact; limit depth to 3 levels.
2. "label" is precise and technical (2-6 words); "summary" has high information density (15-30 words).
3. "type" is "conclusion" for the root, "argument" for major components, "evidence", "logic", or "insight" for details.
4. 2-3 "takeaways" synthesizing the 'So What?' for a technical audience.
5. Return ONLY valid JSON.`

const vocabularyPromptLearner = `You are an expert linguistic consultant extracting advanced vocabulary from the article into a study guide.

Article Title: %s
Article Content:
%s

Return JSON:
{
  "vocabulary": [
    {
      "term": "Word or phrase",
      "pronunciation": "IPA phonetic transcription",
      "definition": "Professional dictionary-style definition in English",
      "example": "A comprehensive example sentence demonstrating usage"
    }
  ]
}

Requirements:
- Provide 8-12 terms that are essential to understanding the article or are high-value academic/professional words.
- Every term must appear verbatim in the article content.
- "pronunciation" must use standard IPA.
- "example" must be a full sentence of at least 15 words that clearly contextualizes the term.
- Return ONLY valid JSON.`

const vocabularyPromptAnalyst = `You are a technical glossary expert.

Article Title: %s
Article Content:
%s

Return JSON:
{
  "vocabulary": [
    {
      "term": "Technical Term / Acronym",
      "pronunciation": "IPA (if applicable) or empty string",
      "definition": "Precise technical definition",
      "example": "A detailed technical sentence showing correct usage in context"
    }
  ]
}

Requirements:
- Extract 8-12 key technical terms, acronyms, or industry jargon used in the article.
- Every term must appear verbatim in the article content.
- "definition" should be technically accurate, specific, and professional.
- "example" should be substantial (15+ words) and technically sound.
- Return ONLY valid JSON.`

var promptRegistry = map[AnalysisMode]map[AnalysisScope]string{
	ModeLearner: {
		ScopeSummary:    summaryPromptLearner,
		ScopeStructure:  structurePromptLearner,
		ScopeVocabulary: vocabularyPromptLearner,
	},
	ModeAnalyst: {
		ScopeSummary:    summaryPromptAnalyst,
		ScopeStructure:  structurePromptAnalyst,
		ScopeVocabulary: vocabularyPromptAnalyst,
	},
}

var systemPrompts = map[AnalysisMode]string{
	ModeLearner: "You are a precise teaching assistant for advanced English learners.",
	ModeAnalyst: "You are a technology industry analyst.",
}

// buildPrompt renders the template for a scope/mode pair from the article's
// title and truncated text
func buildPrompt(scope AnalysisScope, mode AnalysisMode, title, content string, maxChars int) (system, prompt string, err error) {
	byScope, ok := promptRegistry[mode]
	if !ok {
		return "", "", fmt.Errorf("no prompts registered for mode %q", mode)
	}
	template, ok := byScope[scope]
	if !ok {
		return "", "", fmt.Errorf("no prompt registered for scope %q", scope)
	}

	if len(content) > maxChars {
		content = content[:maxChars]
	}
	content = strings.TrimSpace(content)

	return systemPrompts[mode], fmt.Sprintf(template, title, content), nil
}
