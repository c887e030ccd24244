package decoder

import "strings"

// TextDecoder passes bytes through as UTF-8 text. It is the catch-all for
// text/*, JSON, and RTF payloads and must be registered last.
type TextDecoder struct{}

// CanDecode returns true for text/* content types, JSON, RTF, and the
// matching extensions.
func (d *TextDecoder) CanDecode(contentType, name string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "text/") {
		return true
	}
	if containsAny(contentType, "json", "rtf") {
		return true
	}
	return hasAnySuffix(name, ".txt", ".json", ".rtf", ".md")
}

// Decode returns the bytes verbatim with invalid UTF-8 sequences dropped.
func (d *TextDecoder) Decode(name string, content []byte) (string, error) {
	return strings.ToValidUTF8(string(content), ""), nil
}
