package decoder

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// officeTypeFragments are the content-type fragments that mark a Microsoft
// Office document, modern or legacy.
var officeTypeFragments = []string{
	"presentation", "powerpoint", "wordprocessing", "msword", "spreadsheet", "excel",
}

// OfficeDecoder extracts flattened text from Office documents. Modern OOXML
// containers (docx, pptx, xlsx) are read as ZIP archives with the relevant
// XML parts tokenized. Legacy binary formats (doc, ppt, xls) fall back to
// salvaging printable text runs from the raw bytes.
type OfficeDecoder struct{}

// CanDecode returns true for Office content types or Office extensions.
func (d *OfficeDecoder) CanDecode(contentType, name string) bool {
	if containsAny(contentType, officeTypeFragments...) {
		return true
	}
	return hasAnySuffix(name, ".pptx", ".ppt", ".docx", ".doc", ".xlsx", ".xls")
}

// Decode extracts text from the document. The ZIP container decides the
// parse path, not the extension: a mislabeled OOXML file still parses and a
// legacy binary never reaches the XML path.
func (d *OfficeDecoder) Decode(name string, content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return salvageBinaryText(content), nil
	}

	if data, err := readZipFile(zr, "word/document.xml"); err == nil {
		return extractWordText(data), nil
	}
	if slides := findSlideParts(zr); len(slides) > 0 {
		return extractSlidesText(zr, slides), nil
	}
	if text := extractWorkbookText(zr); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("office archive %s has no recognized document part", name)
}

// readZipFile reads one named file from a ZIP archive.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file %s not found in archive", name)
}

// extractWordText tokenizes word/document.xml, emitting one line per
// paragraph with tabs and breaks preserved inside runs.
func extractWordText(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var paragraphs []string
	var current strings.Builder
	var inParagraph, inText bool

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				if inParagraph {
					inText = true
				}
			case "tab":
				if inParagraph {
					current.WriteString("\t")
				}
			case "br":
				if inParagraph {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					inParagraph = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n")
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type slidePart struct {
	path   string
	number int
}

// findSlideParts lists the slide XML parts of a PPTX sorted by slide number.
func findSlideParts(zr *zip.Reader) []slidePart {
	var slides []slidePart
	for _, f := range zr.File {
		if m := slidePartRe.FindStringSubmatch(f.Name); m != nil {
			num := 0
			for _, c := range m[1] {
				num = num*10 + int(c-'0')
			}
			slides = append(slides, slidePart{path: f.Name, number: num})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })
	return slides
}

// extractSlidesText concatenates the text of every slide in order,
// separated by blank lines. Unreadable slides are skipped.
func extractSlidesText(zr *zip.Reader, slides []slidePart) string {
	var parts []string
	for _, slide := range slides {
		data, err := readZipFile(zr, slide.path)
		if err != nil {
			continue
		}
		if text := extractDrawingText(data); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// extractDrawingText tokenizes DrawingML (slide XML), joining text runs
// within a paragraph and emitting one line per paragraph.
func extractDrawingText(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var paragraphs []string
	var current strings.Builder
	var inText bool

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n")
}

// extractWorkbookText pulls the shared-string table plus inline strings of
// every worksheet in an XLSX. Cell values that are plain numbers are left
// out; the shared-string table holds everything a quiz could be built from.
func extractWorkbookText(zr *zip.Reader) string {
	var parts []string
	if data, err := readZipFile(zr, "xl/sharedStrings.xml"); err == nil {
		if text := extractTextElements(data); text != "" {
			parts = append(parts, text)
		}
	}
	sheetRe := regexp.MustCompile(`^xl/worksheets/sheet\d+\.xml$`)
	for _, f := range zr.File {
		if !sheetRe.MatchString(f.Name) {
			continue
		}
		data, err := readZipFile(zr, f.Name)
		if err != nil {
			continue
		}
		if text := extractTextElements(data); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// extractTextElements collects the contents of every <t> element, one line
// each. SpreadsheetML keeps cell strings in <t> both in the shared-string
// table and inline.
func extractTextElements(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var lines []string
	var current strings.Builder
	var inText bool

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
				current.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
				if text := strings.TrimSpace(current.String()); text != "" {
					lines = append(lines, text)
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// salvageBinaryText recovers readable runs from a legacy binary Office
// file. Runs shorter than four printable characters are noise from the
// container structure and dropped.
func salvageBinaryText(content []byte) string {
	const minRun = 4

	var sb strings.Builder
	var run []rune
	flush := func() {
		if len(run) >= minRun {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(string(run))
		}
		run = run[:0]
	}

	for _, b := range content {
		r := rune(b)
		if r == '\n' || r == '\t' || (unicode.IsPrint(r) && r < unicode.MaxASCII) {
			run = append(run, r)
		} else {
			flush()
		}
	}
	flush()
	return strings.TrimSpace(sb.String())
}
