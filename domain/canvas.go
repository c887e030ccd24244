package domain

// Canvas REST resource shapes. Field names follow the Canvas API JSON
// (https://canvas.instructure.com/doc/api/), which uses snake_case and,
// for files, a hyphenated "content-type" key.

// Course is a Canvas course the current user is enrolled in.
type Course struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	CourseCode       string `json:"course_code"`
	EnrollmentTermID int    `json:"enrollment_term_id"`
	SyllabusBody     string `json:"syllabus_body,omitempty"`
}

// Module is a Canvas course module. The modules listing endpoint inlines
// only the first page of items; ItemsCount advertises the real total, so
// ItemsCount > len(Items) means the inline list was truncated.
type Module struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Position   int          `json:"position"`
	ItemsCount int          `json:"items_count"`
	Items      []ModuleItem `json:"items,omitempty"`
}

// Truncated reports whether the inline item list is incomplete and a
// follow-up module items call is required.
func (m *Module) Truncated() bool {
	return m.ItemsCount > len(m.Items)
}

// Module item types as returned by Canvas.
const (
	ModuleItemFile        = "File"
	ModuleItemPage        = "Page"
	ModuleItemAssignment  = "Assignment"
	ModuleItemExternalURL = "ExternalUrl"
)

// ModuleItem is a single entry inside a course module.
type ModuleItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	ContentID   int    `json:"content_id,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
	URL         string `json:"url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
}

// Page is a Canvas wiki page with its HTML body.
type Page struct {
	PageID int    `json:"page_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url"`
}

// PageSummary is a page listing entry without the body. URL doubles as the
// page slug used in /courses/:id/pages/:slug paths.
type PageSummary struct {
	PageID int    `json:"page_id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// CanvasFile is a file attachment owned by Canvas.
type CanvasFile struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content-type"`
}

// Assignment is a Canvas assignment; Description is an HTML fragment and
// may be empty.
type Assignment struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User identifies the current Canvas user.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
