// cmd/newsloom/junkfilter.go
package main

import (
	"regexp"
	"strings"
)

// junkRule drops lines matching boilerplate that survives both the heuristic
// extractor and the AI pass. Each rule gets a name so individual patterns can
// be unit-tested and audited when a new one is added.
type junkRule struct {
	name    string
	pattern *regexp.Regexp
}

// junkRulesVersion bumps whenever the table below changes shape
const junkRulesVersion = 3

var junkRules = []junkRule{
	{"tip-callout", regexp.MustCompile(`(?i)^\|?\s*got a tip\??\s*\|?$`)},
	{"tip-solicitation", regexp.MustCompile(`(?i)are you a current or former .{0,60}(worker|employee)`)},
	{"contact-reporter", regexp.MustCompile(`(?i)^(contact|reach) (the|our) (reporter|author|newsroom)`)},
	{"newsletter-cta", regexp.MustCompile(`(?i)(sign up|subscribe) (for|to) (our|the) newsletter`)},
	{"read-more-cta", regexp.MustCompile(`(?i)^read more( about)?:?\s*$`)},
	{"related-articles", regexp.MustCompile(`(?i)^related( articles| stories| coverage)?:?\s*$`)},
	{"share-bar", regexp.MustCompile(`(?i)^share (this|on) `)},
	{"table-separator", regexp.MustCompile(`^\s*\|?[-\s|:]+\|\s*$`)},
	{"lone-pipe", regexp.MustCompile(`^\s*\|\s*$`)},
	{"cookie-banner", regexp.MustCompile(`(?i)we use cookies`)},
}

var trailingPipe = regexp.MustCompile(`\s*\|\s*$`)

// PostFilter removes known boilerplate idioms line-by-line and collapses
// runs of three or more blank lines down to a single blank line
func PostFilter(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	blankRun := 0
	for _, line := range lines {
		if isJunkLine(line) {
			continue
		}

		cleaned := trailingPipe.ReplaceAllString(line, "")
		// Keep genuine table rows intact: only strip a trailing pipe from
		// lines that are not pipe-delimited rows.
		if strings.Count(line, "|") >= 2 && strings.HasPrefix(strings.TrimSpace(line), "|") {
			cleaned = line
		}

		if strings.TrimSpace(cleaned) == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
			out = append(out, "")
			continue
		}

		blankRun = 0
		out = append(out, cleaned)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isJunkLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, rule := range junkRules {
		if rule.pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}
