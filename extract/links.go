// Package extract provides pure functions that scan raw HTML for links and
// Canvas-internal references. Classification works on URL shape alone so
// discovery stays cheap and side-effect-free; content-type confirmation
// happens at fetch time.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"cognify/domain"
)

var (
	hrefRe     = regexp.MustCompile(`(?i)href=["']([^"']+)["']`)
	embedSrcRe = regexp.MustCompile(`(?i)<(?:embed|iframe)\s[^>]*?src=["']([^"']+)["'][^>]*>`)
	fileIDRe   = regexp.MustCompile(`(?i)/files/(\d+)(?:/download)?`)
	anchorRe   = regexp.MustCompile(`(?is)<a\s([^>]*?)>(.*?)</a>`)
	bareARe    = regexp.MustCompile(`(?i)<a\s*>`)
	titleAttRe = regexp.MustCompile(`(?i)title=["']([^"']+)["']`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
)

// Google Drive and Docs share-link shapes recognized by GoogleDriveDownloadURL.
var (
	driveFileRe  = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)
	driveOpenRe  = regexp.MustCompile(`drive\.google\.com/open\?id=([a-zA-Z0-9_-]+)`)
	docsDocRe    = regexp.MustCompile(`docs\.google\.com/document/d/([a-zA-Z0-9_-]+)`)
	docsSlidesRe = regexp.MustCompile(`docs\.google\.com/presentation/d/([a-zA-Z0-9_-]+)`)
)

// directFileExtensions are the URL path extensions treated as directly
// downloadable documents.
var directFileExtensions = []string{
	".pdf", ".pptx", ".ppt", ".docx", ".doc", ".xlsx", ".xls",
	".txt", ".md", ".html", ".htm", ".rtf",
}

// ExtractLinks returns every absolute http(s) href in document order.
// Duplicates are preserved; callers dedup.
func ExtractLinks(html string) []string {
	var links []string
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		u := m[1]
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			links = append(links, u)
		}
	}
	return links
}

// ExtractEmbeddedHTMLURLs returns the src of every <iframe> and <embed>
// tag. Protocol-relative URLs are normalized to https; non-http values are
// discarded. Output is deduplicated in order of first appearance.
func ExtractEmbeddedHTMLURLs(html string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, m := range embedSrcRe.FindAllStringSubmatch(html, -1) {
		u := m[1]
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		if !strings.HasPrefix(u, "http") {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// ExtractCanvasFileIDs returns Canvas file ids referenced as
// /files/<id> or /files/<id>/download, deduplicated in order of first
// appearance.
func ExtractCanvasFileIDs(html string) []int {
	var ids []int
	seen := make(map[int]struct{})
	for _, m := range fileIDRe.FindAllStringSubmatch(html, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ExtractCanvasPageSlugs returns the page slugs linked from HTML for the
// given course, matching both absolute and relative
// /courses/<courseID>/pages/<slug> hrefs. Titles come from the anchor's
// title attribute, else its trimmed inner text, else a humanized form of
// the slug. Deduplicated by slug.
func ExtractCanvasPageSlugs(html string, courseID int) []domain.PageLink {
	pageHrefRe := regexp.MustCompile(
		fmt.Sprintf(`(?i)href=["'](?:https?://[^/]+)?/courses/%d/pages/([^"'#?]+)["']`, courseID))

	var links []domain.PageLink
	seen := make(map[string]struct{})

	// Scan full anchors first so inner text and title attributes are
	// available for the title.
	for _, m := range anchorRe.FindAllStringSubmatch(fixBareAnchors(html), -1) {
		attrs, inner := m[1], m[2]
		hm := pageHrefRe.FindStringSubmatch(attrs)
		if hm == nil {
			continue
		}
		slug := decodeSlug(hm[1])
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		links = append(links, domain.PageLink{Slug: slug, Title: anchorTitle(attrs, inner, slug)})
	}

	// Bare hrefs outside well-formed anchors still count; fall back to the
	// humanized slug for their title.
	for _, m := range pageHrefRe.FindAllStringSubmatch(html, -1) {
		slug := decodeSlug(m[1])
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		links = append(links, domain.PageLink{Slug: slug, Title: HumanizeSlug(slug)})
	}

	return links
}

// ExtractExternalFileLinks scans anchor pairs for URLs classified as direct
// files or Drive-convertible links. Relative hrefs are resolved against
// baseURL when given and skipped otherwise; fragment-only and mailto
// anchors are always skipped. Deduplicated by resolved URL.
func ExtractExternalFileLinks(html, baseURL string) []domain.FileLink {
	var base *url.URL
	if baseURL != "" {
		base, _ = url.Parse(baseURL)
	}

	var links []domain.FileLink
	seen := make(map[string]struct{})
	for _, m := range anchorRe.FindAllStringSubmatch(fixBareAnchors(html), -1) {
		attrs, inner := m[1], m[2]
		hm := hrefRe.FindStringSubmatch(attrs)
		if hm == nil {
			continue
		}
		href := hm[1]
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			continue
		}

		resolved := href
		switch {
		case strings.HasPrefix(href, "//"):
			resolved = "https:" + href
		case !strings.HasPrefix(href, "http"):
			if base == nil {
				continue
			}
			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			resolved = base.ResolveReference(ref).String()
		}
		if !strings.HasPrefix(resolved, "http") {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}

		if !IsDirectFileURL(resolved) {
			if _, ok := GoogleDriveDownloadURL(resolved); !ok {
				continue
			}
		}

		seen[resolved] = struct{}{}
		links = append(links, domain.FileLink{URL: resolved, Title: anchorFileTitle(attrs, inner, resolved)})
	}
	return links
}

// IsDirectFileURL reports whether the URL path ends in a known
// downloadable-document extension. Unparseable URLs are never direct files.
func IsDirectFileURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range directFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// GoogleDriveDownloadURL rewrites a Google Drive or Docs share URL to its
// direct export/download form. The second return is false for anything that
// is not one of the four recognized shapes.
func GoogleDriveDownloadURL(rawURL string) (string, bool) {
	if m := driveFileRe.FindStringSubmatch(rawURL); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1], true
	}
	if m := driveOpenRe.FindStringSubmatch(rawURL); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1], true
	}
	if m := docsDocRe.FindStringSubmatch(rawURL); m != nil {
		return "https://docs.google.com/document/d/" + m[1] + "/export?format=txt", true
	}
	if m := docsSlidesRe.FindStringSubmatch(rawURL); m != nil {
		return "https://docs.google.com/presentation/d/" + m[1] + "/export?format=txt", true
	}
	return "", false
}

// HumanizeSlug converts a page slug like "week-1-intro" to "Week 1 Intro".
func HumanizeSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// URLToLabel derives a human label from a URL's last path segment:
// percent-decoded, separators replaced with spaces, extension stripped.
func URLToLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "External File"
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "External File"
	}
	last := segments[len(segments)-1]
	if last == "view" || last == "edit" {
		return "External File"
	}
	if decoded, err := url.PathUnescape(last); err == nil {
		last = decoded
	}
	last = strings.NewReplacer("_", " ", "-", " ").Replace(last)
	if i := strings.LastIndex(last, "."); i > 0 {
		last = last[:i]
	}
	if strings.TrimSpace(last) == "" {
		return "External File"
	}
	return last
}

// fixBareAnchors treats a bare "<a>" with no attributes as a closing tag.
// Some Canvas page bodies carry this malformation in place of "</a>".
func fixBareAnchors(html string) string {
	return bareARe.ReplaceAllString(html, "</a>")
}

func decodeSlug(raw string) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func anchorTitle(attrs, inner, slug string) string {
	if m := titleAttRe.FindStringSubmatch(attrs); m != nil {
		return m[1]
	}
	if text := strings.TrimSpace(tagRe.ReplaceAllString(inner, "")); text != "" {
		return text
	}
	return HumanizeSlug(slug)
}

func anchorFileTitle(attrs, inner, resolvedURL string) string {
	if m := titleAttRe.FindStringSubmatch(attrs); m != nil {
		return m[1]
	}
	if text := strings.TrimSpace(tagRe.ReplaceAllString(inner, "")); text != "" {
		return text
	}
	return URLToLabel(resolvedURL)
}
