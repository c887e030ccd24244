package decoder

import (
	"regexp"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// HTMLDecoder converts HTML into readable plain text. Chrome elements are
// stripped with goquery, go-readability isolates the main content, and a
// structural paragraph walk covers documents readability cannot handle,
// which includes most Canvas page bodies since they are fragments rather
// than full pages.
type HTMLDecoder struct{}

// CanDecode returns true for HTML content types or .html/.htm names.
func (d *HTMLDecoder) CanDecode(contentType, name string) bool {
	return containsAny(contentType, "html") || hasAnySuffix(name, ".html", ".htm")
}

func (d *HTMLDecoder) Decode(name string, content []byte) (string, error) {
	return HTMLToText(string(content)), nil
}

// HTMLToText strips tags, decodes entities, and collapses whitespace into
// plain text paragraphs.
func HTMLToText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	// Payload is already plain text.
	if !strings.Contains(trimmed, "<") {
		return normalizeWhitespace(trimmed)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed)); err == nil {
		doc.Find("head, script, style, noscript, title, aside, nav, header, footer").Remove()
		doc.Find("iframe, embed, object, video, audio, canvas").Remove()
		if cleaned, err := doc.Html(); err == nil && cleaned != "" {
			trimmed = cleaned
		}
	}

	if article, err := readability.FromReader(strings.NewReader(trimmed), nil); err == nil {
		var buf strings.Builder
		if err := article.RenderText(&buf); err == nil {
			text := strings.TrimSpace(buf.String())
			// Readability sometimes keeps only the title of a short
			// fragment; fall through to the structural walk in that case.
			if len(text) >= 200 {
				return normalizeWhitespace(text)
			}
		}
	}

	return extractParagraphs(trimmed)
}

// extractParagraphs walks block elements in document order and joins their
// text with blank lines, preserving the heading/paragraph/list structure.
func extractParagraphs(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normalizeWhitespace(stripTags(html))
	}

	var paragraphs []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td, th").Each(func(_ int, s *goquery.Selection) {
		// Skip elements that contain another block element so nested
		// structures are not emitted twice.
		if s.Find("p, li, pre, blockquote").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, normalizeWhitespace(text))
		}
	})

	if len(paragraphs) == 0 {
		return normalizeWhitespace(stripTags(html))
	}
	return strings.Join(paragraphs, "\n\n")
}

// stripTags removes every tag with bluemonday's strict policy, leaving
// decoded text content only.
func stripTags(raw string) string {
	return bluemonday.StrictPolicy().Sanitize(raw)
}

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// normalizeWhitespace collapses runs of spaces and tabs and limits blank
// lines to one in a row.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(newlineRunRe.ReplaceAllString(s, "\n\n"))
}
