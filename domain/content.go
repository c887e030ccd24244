package domain

import "strings"

// DocumentSeparator joins extracted documents into one corpus string.
const DocumentSeparator = "\n\n---\n\n"

// ContentSelection names the course entities a user picked to build a study
// corpus from. Identifiers are unique within each slice; the aggregator
// fetches each one exactly once.
type ContentSelection struct {
	FileIDs          []int    `json:"file_ids"`
	PageSlugs        []string `json:"page_slugs"`
	AssignmentIDs    []int    `json:"assignment_ids"`
	IncludeSyllabus  bool     `json:"include_syllabus"`
	ExternalLinkURLs []string `json:"external_link_urls"`
	UploadIDs        []string `json:"upload_ids"`
}

// Empty reports whether nothing at all was selected.
func (s *ContentSelection) Empty() bool {
	return len(s.FileIDs) == 0 &&
		len(s.PageSlugs) == 0 &&
		len(s.AssignmentIDs) == 0 &&
		!s.IncludeSyllabus &&
		len(s.ExternalLinkURLs) == 0 &&
		len(s.UploadIDs) == 0
}

// Document is one unit of extracted text. Label becomes a markdown heading
// when documents are joined into a corpus.
type Document struct {
	Label string
	Text  string
}

// Render formats the document as a heading plus body. Empty text renders to
// an empty string so blank extractions drop out of the join.
func (d Document) Render() string {
	if strings.TrimSpace(d.Text) == "" {
		return ""
	}
	return "## " + d.Label + "\n\n" + d.Text
}

// JoinDocuments folds documents into a single corpus string in the order
// given, dropping empty extractions. The result is handed downstream as
// opaque text.
func JoinDocuments(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if rendered := d.Render(); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, DocumentSeparator)
}

// PageLink is a Canvas page reference discovered inside an HTML body.
type PageLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// FileLink is an external downloadable file reference discovered inside an
// HTML body or a module's ExternalUrl item.
type FileLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// UploadEntry is a user-uploaded document held in the ephemeral upload
// store until its TTL lapses.
type UploadEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"-"`
}
