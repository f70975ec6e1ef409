// cmd/newsloom/extract.go
package main

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// noContentSentinel is what the refinement prompt instructs the model to
// return when the page holds no article body
const noContentSentinel = "NO_CONTENT"

var strippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true,
	"nav": true, "footer": true, "header": true, "aside": true,
	"iframe": true, "form": true, "button": true, "template": true,
}

// junkClassFragments mark elements whose class or id flags them as page
// furniture rather than article content
var junkClassFragments = []string{
	"newsletter", "related", "share", "comment", "sidebar", "promo",
	"advert", "subscribe", "social", "breadcrumb", "cookie",
}

// ExtractionPipeline converts raw page HTML into clean article text through
// an ordered chain of strategies with graceful degradation
type ExtractionPipeline struct {
	gen Generator
	cfg *Config
}

// NewExtractionPipeline wires the pipeline to a generation backend
func NewExtractionPipeline(gen Generator, c *Config) *ExtractionPipeline {
	return &ExtractionPipeline{gen: gen, cfg: c}
}

// Extract runs the strategy chain: an already-computed candidate extraction,
// the readability heuristic, the AI refinement pass, and finally a raw
// tag-strip fallback. Each stage runs only if the previous output is shorter
// than the insufficiency threshold. Returns "" on total failure and never
// panics or propagates stage errors.
func (p *ExtractionPipeline) Extract(ctx context.Context, rawHTML, pageURL, candidate string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			GetLogger().Error("Extraction panic for %s: %v", pageURL, r)
			result = ""
		}
	}()

	if strings.TrimSpace(rawHTML) == "" && strings.TrimSpace(candidate) == "" {
		return ""
	}

	text := strings.TrimSpace(candidate)

	if p.insufficient(text) {
		text = p.readabilityExtract(rawHTML, pageURL)
	}

	if p.insufficient(text) {
		text = p.aiRefine(ctx, rawHTML)
	}

	if !p.insufficient(text) {
		return PostFilter(text)
	}

	// Last resort: strip obvious non-content tags and return whatever text
	// remains. This stage cannot fail short of an empty document.
	return PostFilter(htmlToText(rawHTML))
}

func (p *ExtractionPipeline) insufficient(text string) bool {
	return len(strings.TrimSpace(text)) < p.cfg.MinExtractChars
}

// readabilityExtract runs the boilerplate-removal heuristic and renders the
// surviving fragment as normalized text
func (p *ExtractionPipeline) readabilityExtract(rawHTML, pageURL string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		GetLogger().Debug("Readability extraction failed for %s: %v", pageURL, err)
		return ""
	}

	text := htmlToText(article.Content)
	if strings.TrimSpace(text) == "" {
		text = strings.TrimSpace(article.TextContent)
	}
	return text
}

const refineSystemPrompt = "You extract article bodies from noisy web page HTML. You output only the article text, never commentary."

const refineContract = `Extract the full article body from the HTML below.

Formatting contract:
- Output plain text only: no HTML tags, no markdown headings, no commentary.
- Keep each sentence on one line; do not insert line breaks mid-sentence.
- Separate paragraphs with a single blank line.
- Preserve code blocks verbatim inside triple-backtick fences.
- Render tables as pipe-delimited rows, one row per line.
- Omit navigation, ads, bylines, newsletter prompts, and footers.
- If the page contains no article body, reply with exactly ` + noContentSentinel + `.

HTML:
`

// aiRefine sends a pre-cleaned, truncated HTML fragment to the generation
// backend under a strict formatting contract. Any service error, the
// no-content sentinel, or a too-short result all mean failure, and the
// caller falls through to the next stage.
func (p *ExtractionPipeline) aiRefine(ctx context.Context, rawHTML string) string {
	if p.gen == nil || strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	fragment := precleanHTML(rawHTML, p.cfg.MaxRefineHTMLChars)
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	resp, err := p.gen.Generate(ctx, GenerateRequest{
		System:      refineSystemPrompt,
		Prompt:      refineContract + fragment,
		MaxTokens:   p.cfg.AIMaxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		GetLogger().Warning("AI refinement failed: %v", err)
		return ""
	}

	resp = strings.TrimSpace(resp)
	if resp == "" || strings.EqualFold(resp, noContentSentinel) {
		return ""
	}
	if len(resp) < p.cfg.MinExtractChars {
		return ""
	}
	return resp
}

// precleanHTML removes script/style/nav/footer/junk-class elements, prefers
// the <article> or <main> region when present, and caps the fragment size
func precleanHTML(rawHTML string, maxChars int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	for tag := range strippedTags {
		doc.Find(tag).Remove()
	}
	for _, frag := range junkClassFragments {
		doc.Find("[class*='" + frag + "']").Remove()
		doc.Find("[id*='" + frag + "']").Remove()
	}

	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("main").First()
	}
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}

	fragment, err := sel.Html()
	if err != nil || strings.TrimSpace(fragment) == "" {
		return ""
	}

	if len(fragment) > maxChars {
		fragment = fragment[:maxChars]
	}
	return fragment
}

// htmlToText renders an HTML fragment as normalized article text: paragraphs
// separated by blank lines, pre blocks fenced, tables as pipe-delimited rows
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var b strings.Builder
	renderBlocks(root, &b)
	return strings.TrimSpace(b.String())
}

var paragraphTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "li": true, "blockquote": true,
	"figcaption": true, "dt": true, "dd": true,
}

func renderBlocks(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		if strippedTags[n.Data] {
			return
		}
		switch {
		case n.Data == "pre":
			code := rawText(n)
			if strings.TrimSpace(code) != "" {
				b.WriteString("```\n")
				b.WriteString(strings.Trim(code, "\n"))
				b.WriteString("\n```\n\n")
			}
			return
		case n.Data == "table":
			renderTable(n, b)
			return
		case paragraphTags[n.Data]:
			text := inlineText(n)
			if text != "" {
				b.WriteString(text)
				b.WriteString("\n\n")
			}
			return
		}
	}

	if n.Type == html.TextNode {
		// Stray text directly under a container becomes its own paragraph
		text := collapseSpace(n.Data)
		if text != "" && len(text) > 1 {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderBlocks(c, b)
	}
}

func renderTable(table *html.Node, b *strings.Builder) {
	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, inlineText(c))
				}
			}
			if len(cells) > 0 {
				b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
	b.WriteString("\n")
}

// inlineText concatenates descendant text with whitespace collapsed
func inlineText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpace(b.String())
}

// rawText concatenates descendant text preserving whitespace, for pre blocks
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanInlineContent normalizes inline feed HTML to plain text for the
// sufficiency decision and for storage when no full fetch is needed
func cleanInlineContent(fragment string) string {
	return PostFilter(htmlToText(fragment))
}
