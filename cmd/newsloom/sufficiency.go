// cmd/newsloom/sufficiency.go
package main

// NeedsFullFetch decides whether a feed item's inline content is usable as-is
// or the full page must be fetched and run through the extraction pipeline.
// Lengths are measured on cleaned plain text, not raw markup.
//
// Full fetch is required when any of these hold:
//   - the inline content is below the minimum length,
//   - the source is known to truncate its feeds,
//   - the inline content is not meaningfully longer than the inline summary
//     (content ≈ summary means the feed carries no real body).
func NeedsFullFetch(src Source, summaryLen, contentLen int, c *Config) bool {
	if contentLen < c.MinInlineContentChars {
		return true
	}
	if src.TruncatedFeed {
		return true
	}
	if float64(contentLen) < float64(summaryLen)*c.ContentSummaryRatio {
		return true
	}
	return false
}
