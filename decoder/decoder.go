// Package decoder turns raw document bytes into plain text. Each format
// gets its own Decoder; a Registry dispatches on content type or file name,
// first match wins.
package decoder

import (
	"strings"

	"cognify/domain"
)

// Decoder extracts readable text from one document format.
type Decoder interface {
	// CanDecode reports whether this decoder handles the given advertised
	// content type or file name. Both checks are case-insensitive.
	CanDecode(contentType, name string) bool

	// Decode extracts plain text from content. An empty string with a nil
	// error means the document had nothing readable; callers skip it.
	Decode(name string, content []byte) (string, error)
}

// Registry holds an ordered list of decoders. Dispatch order matters:
// specific formats must be registered before the catch-all text decoder.
type Registry struct {
	decoders []Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make([]Decoder, 0, 4)}
}

// DefaultRegistry creates a registry with all built-in decoders in
// dispatch order: PDF, Office, HTML, then plain text.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PDFDecoder{})
	r.Register(&OfficeDecoder{})
	r.Register(&HTMLDecoder{})
	r.Register(&TextDecoder{})
	return r
}

// Register appends a decoder to the dispatch list.
func (r *Registry) Register(d Decoder) {
	r.decoders = append(r.decoders, d)
}

// DecoderFor returns the first decoder that handles the given content type
// or file name, or nil when the format is unsupported.
func (r *Registry) DecoderFor(contentType, name string) Decoder {
	for _, d := range r.decoders {
		if d.CanDecode(contentType, name) {
			return d
		}
	}
	return nil
}

// Supported reports whether any registered decoder handles the format.
func (r *Registry) Supported(contentType, name string) bool {
	return r.DecoderFor(contentType, name) != nil
}

// ExtractText dispatches content to the matching decoder and returns its
// trimmed text. Unsupported formats return ErrUnsupportedFileType; a
// decoder that produced no non-whitespace text returns ErrNoExtractableText.
func (r *Registry) ExtractText(contentType, name string, content []byte) (string, error) {
	d := r.DecoderFor(contentType, name)
	if d == nil {
		return "", domain.ErrUnsupportedFileType
	}
	text, err := d.Decode(name, content)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrNoExtractableText
	}
	return text, nil
}

// IsReadable reports whether a file is worth offering for study content.
// It matches the decoder dispatch but leaves out CSV, which decodes as text
// yet rarely carries prose.
func (r *Registry) IsReadable(contentType, name string) bool {
	ct := strings.ToLower(contentType)
	lower := strings.ToLower(name)
	if strings.Contains(ct, "csv") || strings.HasSuffix(lower, ".csv") {
		return false
	}
	return r.Supported(contentType, name)
}

// GenericContentType reports whether the advertised content type carries no
// format information: empty, or an octet-stream placeholder. Callers use it
// to decide whether a file-name hint should participate in dispatch at all.
func GenericContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "", "application/octet-stream", "binary/octet-stream", "application/binary":
		return true
	}
	return false
}

// hasAnysuffix reports whether the lowercased name ends in one of exts.
func hasAnySuffix(name string, exts ...string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// containsAny reports whether the lowercased content type contains one of
// the given fragments.
func containsAny(contentType string, fragments ...string) bool {
	ct := strings.ToLower(contentType)
	for _, f := range fragments {
		if strings.Contains(ct, f) {
			return true
		}
	}
	return false
}
