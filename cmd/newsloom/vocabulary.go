// cmd/newsloom/vocabulary.go
package main

import "strings"

// basicVocabulary holds words too elementary to surface as study terms
// (roughly CEFR A1-B1). Deliberately a trimmed list; additions come with a
// test case each.
var basicVocabulary = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "have": true, "will": true, "about": true,
	"make": true, "made": true, "good": true, "great": true, "time": true,
	"year": true, "years": true, "people": true, "company": true, "companies": true,
	"news": true, "new": true, "work": true, "working": true, "use": true,
	"using": true, "used": true, "help": true, "helps": true, "says": true,
	"said": true, "today": true, "world": true, "first": true, "last": true,
	"large": true, "small": true, "many": true, "more": true, "most": true,
	"important": true, "different": true, "possible": true, "available": true,
}

// techBuzzwords are terms any reader of this feed already knows; surfacing
// them as vocabulary is noise
var techBuzzwords = map[string]bool{
	"ai": true, "ml": true, "api": true, "app": true, "data": true,
	"model": true, "models": true, "software": true, "hardware": true,
	"startup": true, "platform": true, "ecosystem": true, "solution": true,
	"cloud": true, "internet": true, "online": true, "website": true,
	"user": true, "users": true, "server": true, "database": true,
	"leverage": true, "scalable": true, "robust": true, "seamless": true,
	"workflow": true, "framework": true, "infrastructure": true,
}

// isBasicTerm reports whether a term is too common to keep. Phrases count as
// basic when more than 60% of their words are.
func isBasicTerm(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" || len(t) <= 2 {
		return true
	}
	if basicVocabulary[t] || techBuzzwords[t] {
		return true
	}

	words := strings.Fields(t)
	if len(words) > 1 {
		basic := 0
		for _, w := range words {
			if basicVocabulary[w] || techBuzzwords[w] {
				basic++
			}
		}
		if float64(basic)/float64(len(words)) > 0.6 {
			return true
		}
	}
	return false
}

// filterVocabulary applies both read-time guards to a vocabulary payload:
// the hallucination guard (term must appear, case-insensitively, in the
// article text) and the basic-word filter. The input slice holds the decoded
// JSON entries; the return value preserves entry structure untouched.
func filterVocabulary(entries []interface{}, articleText string) []interface{} {
	lowered := strings.ToLower(articleText)
	kept := make([]interface{}, 0, len(entries))

	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		term, _ := entry["term"].(string)
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if !strings.Contains(lowered, strings.ToLower(term)) {
			GetLogger().Debug("Dropping vocabulary term not found in article: %q", term)
			continue
		}
		if isBasicTerm(term) {
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}
