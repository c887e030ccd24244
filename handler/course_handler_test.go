package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognify/domain"
	"cognify/service"
)

type fakeCourseService struct {
	courses []domain.Course
	content *service.CourseContent
	err     error
}

func (f *fakeCourseService) ListCourses(ctx context.Context, token string) ([]domain.Course, error) {
	return f.courses, f.err
}

func (f *fakeCourseService) CourseContent(ctx context.Context, token string, courseID int) (*service.CourseContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

type fakeNamer struct {
	names     map[int]service.FriendlyName
	namesErr  error
	searchIDs []int
}

func (f *fakeNamer) FriendlyNames(ctx context.Context, courses []domain.Course) (map[int]service.FriendlyName, error) {
	return f.names, f.namesErr
}

func (f *fakeNamer) SemanticSearch(ctx context.Context, query string, courses []domain.Course) ([]int, error) {
	return f.searchIDs, nil
}

func newEchoContext(t *testing.T, method, target string, body *string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(*body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("canvas_token", "test-token")
	return c, rec
}

func TestHandleListCourses(t *testing.T) {
	courses := &fakeCourseService{courses: []domain.Course{
		{ID: 7, Name: "INTRO TO CS (FS2026)", CourseCode: "CMP_SCI 1250-001"},
		{ID: 9, Name: "Calculus II", CourseCode: "MATH 1320"},
	}}
	namer := &fakeNamer{names: map[int]service.FriendlyName{
		7: {Short: "Comp Sci 1250", Full: "Intro to Computer Science"},
	}}
	h := NewCourseHandler(courses, namer, slog.New(slog.DiscardHandler))

	c, rec := newEchoContext(t, http.MethodGet, "/api/v1/courses", nil)
	require.NoError(t, h.HandleListCourses(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CourseListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Courses, 2)
	assert.Equal(t, "Comp Sci 1250", resp.Courses[0].ShortName)
	assert.Equal(t, "Intro to Computer Science", resp.Courses[0].FullName)
	// Courses the namer skipped keep their raw Canvas names.
	assert.Equal(t, "MATH 1320", resp.Courses[1].ShortName)
	assert.Equal(t, "Calculus II", resp.Courses[1].FullName)
}

func TestHandleListCoursesSemanticFilter(t *testing.T) {
	courses := &fakeCourseService{courses: []domain.Course{
		{ID: 7, Name: "Intro to CS", CourseCode: "CS 1250"},
		{ID: 9, Name: "Calculus II", CourseCode: "MATH 1320"},
	}}
	namer := &fakeNamer{searchIDs: []int{9}}
	h := NewCourseHandler(courses, namer, slog.New(slog.DiscardHandler))

	c, rec := newEchoContext(t, http.MethodGet, "/api/v1/courses?q=math", nil)
	require.NoError(t, h.HandleListCourses(c))

	var resp CourseListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, 9, resp.Courses[0].ID)
}

func TestHandleListCoursesNamerFailureKeepsRawNames(t *testing.T) {
	courses := &fakeCourseService{courses: []domain.Course{
		{ID: 7, Name: "Intro to CS", CourseCode: "CS 1250"},
	}}
	namer := &fakeNamer{namesErr: errors.New("model unavailable")}
	h := NewCourseHandler(courses, namer, slog.New(slog.DiscardHandler))

	c, rec := newEchoContext(t, http.MethodGet, "/api/v1/courses", nil)
	require.NoError(t, h.HandleListCourses(c))

	var resp CourseListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, "CS 1250", resp.Courses[0].ShortName)
}

func TestHandleListCoursesCanvasError(t *testing.T) {
	courses := &fakeCourseService{err: domain.ErrNotAuthenticated}
	h := NewCourseHandler(courses, &fakeNamer{}, slog.New(slog.DiscardHandler))

	c, _ := newEchoContext(t, http.MethodGet, "/api/v1/courses", nil)
	err := h.HandleListCourses(c)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestHandleCourseContent(t *testing.T) {
	courses := &fakeCourseService{content: &service.CourseContent{
		Course:      domain.Course{ID: 42, Name: "Algorithms"},
		HasSyllabus: true,
	}}
	h := NewCourseHandler(courses, &fakeNamer{}, slog.New(slog.DiscardHandler))

	c, rec := newEchoContext(t, http.MethodGet, "/api/v1/courses/42/content", nil)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	require.NoError(t, h.HandleCourseContent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var content service.CourseContent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &content))
	assert.True(t, content.HasSyllabus)
	assert.Equal(t, 42, content.Course.ID)
}

func TestHandleCourseContentInvalidID(t *testing.T) {
	h := NewCourseHandler(&fakeCourseService{}, &fakeNamer{}, slog.New(slog.DiscardHandler))

	for _, raw := range []string{"abc", "-3", "0"} {
		c, _ := newEchoContext(t, http.MethodGet, "/api/v1/courses/x/content", nil)
		c.SetParamNames("courseId")
		c.SetParamValues(raw)

		err := h.HandleCourseContent(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, raw)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}
