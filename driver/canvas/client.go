// Package canvas is a thin, read-only client for the Canvas LMS REST API.
// Every call carries the caller's bearer token; responses are cached for a
// short window so one aggregation burst does not hammer the upstream.
package canvas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"cognify/domain"
)

const (
	apiPrefix = "/api/v1"

	// Canvas caps per_page at 100; always ask for the maximum so list
	// endpoints need one request in the common case.
	perPage = "100"

	cacheTTL  = 5 * time.Minute
	cacheSize = 512

	requestTimeout = 15 * time.Second
)

// Client accesses one Canvas instance on behalf of many users. It is safe
// for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *expirable.LRU[string, []byte]
	logger  *slog.Logger
}

// NewClient creates a client for the Canvas instance at baseURL
// (scheme+host, no /api/v1 suffix).
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   expirable.NewLRU[string, []byte](cacheSize, nil, cacheTTL),
		logger:  logger,
	}
}

// CurrentUser returns the identity the token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, token, "/users/self", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Courses lists the user's active course enrollments.
func (c *Client) Courses(ctx context.Context, token string) ([]domain.Course, error) {
	q := url.Values{"enrollment_state": {"active"}, "per_page": {perPage}}
	var courses []domain.Course
	if err := c.get(ctx, token, "/courses", q, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CourseWithSyllabus returns one course with its syllabus body inlined.
func (c *Client) CourseWithSyllabus(ctx context.Context, token string, courseID int) (*domain.Course, error) {
	q := url.Values{"include[]": {"syllabus_body"}}
	var course domain.Course
	if err := c.get(ctx, token, "/courses/"+strconv.Itoa(courseID), q, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// ModulesWithItems lists a course's modules with items inlined. Canvas
// truncates the inline item list for large modules; any module whose
// items_count exceeds what came inline gets its full item list refetched.
func (c *Client) ModulesWithItems(ctx context.Context, token string, courseID int) ([]domain.Module, error) {
	q := url.Values{"include[]": {"items"}, "per_page": {perPage}}
	var modules []domain.Module
	path := fmt.Sprintf("/courses/%d/modules", courseID)
	if err := c.get(ctx, token, path, q, &modules); err != nil {
		return nil, err
	}

	for i := range modules {
		if !modules[i].Truncated() {
			continue
		}
		items, err := c.ModuleItems(ctx, token, courseID, modules[i].ID)
		if err != nil {
			c.logger.Warn("module item refetch failed, keeping truncated list",
				"course_id", courseID, "module_id", modules[i].ID, "error", err)
			continue
		}
		modules[i].Items = items
	}
	return modules, nil
}

// ModuleItems returns the full item list for one module.
func (c *Client) ModuleItems(ctx context.Context, token string, courseID, moduleID int) ([]domain.ModuleItem, error) {
	q := url.Values{"per_page": {perPage}}
	var items []domain.ModuleItem
	path := fmt.Sprintf("/courses/%d/modules/%d/items", courseID, moduleID)
	if err := c.get(ctx, token, path, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Pages lists a course's wiki pages without bodies.
func (c *Client) Pages(ctx context.Context, token string, courseID int) ([]domain.PageSummary, error) {
	q := url.Values{"per_page": {perPage}}
	var pages []domain.PageSummary
	if err := c.get(ctx, token, fmt.Sprintf("/courses/%d/pages", courseID), q, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// Page returns one wiki page with its HTML body.
func (c *Client) Page(ctx context.Context, token string, courseID int, slug string) (*domain.Page, error) {
	var page domain.Page
	path := fmt.Sprintf("/courses/%d/pages/%s", courseID, url.PathEscape(slug))
	if err := c.get(ctx, token, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Files lists a course's file attachments.
func (c *Client) Files(ctx context.Context, token string, courseID int) ([]domain.CanvasFile, error) {
	q := url.Values{"per_page": {perPage}}
	var files []domain.CanvasFile
	if err := c.get(ctx, token, fmt.Sprintf("/courses/%d/files", courseID), q, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// File returns one file's metadata, including its pre-signed download URL.
func (c *Client) File(ctx context.Context, token string, fileID int) (*domain.CanvasFile, error) {
	var file domain.CanvasFile
	if err := c.get(ctx, token, "/files/"+strconv.Itoa(fileID), nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Assignment returns one assignment with its HTML description.
func (c *Client) Assignment(ctx context.Context, token string, courseID, assignmentID int) (*domain.Assignment, error) {
	var assignment domain.Assignment
	path := fmt.Sprintf("/courses/%d/assignments/%d", courseID, assignmentID)
	if err := c.get(ctx, token, path, nil, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// DownloadFile fetches a Canvas file body from its pre-signed URL. The URL
// embeds a verifier, so the bearer token still goes along for instances
// that require it. Download bodies are never cached.
func (c *Client) DownloadFile(ctx context.Context, token, fileURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build file download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &domain.CanvasAPIError{Status: resp.StatusCode, Path: fileURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// get performs a cached, token-authenticated GET against the API and
// decodes the JSON response into out.
func (c *Client) get(ctx context.Context, token, path string, query url.Values, out any) error {
	if token == "" {
		return domain.ErrNotAuthenticated
	}

	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	key := cacheKey(token, u)
	if body, ok := c.cache.Get(key); ok {
		return json.Unmarshal(body, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build canvas request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("canvas request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("canvas API non-2xx", "path", path, "status", resp.StatusCode)
		return &domain.CanvasAPIError{Status: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read canvas response %s: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode canvas response %s: %w", path, err)
	}

	c.cache.Add(key, body)
	return nil
}

// cacheKey scopes cached responses to the requesting token without
// keeping the token itself in memory as a map key.
func cacheKey(token, url string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8]) + "|" + url
}
