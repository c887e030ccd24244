package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cognify/middleware"
	"cognify/service"
)

// CourseHandler serves the course list and the per-course content picker.
type CourseHandler struct {
	courses service.CourseService
	namer   service.CourseNamer
	logger  *slog.Logger
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courses service.CourseService, namer service.CourseNamer, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, namer: namer, logger: logger}
}

// CourseView is one course in the listing, with friendly names merged in.
type CourseView struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
	ShortName  string `json:"short_name"`
	FullName   string `json:"full_name"`
}

// CourseListResponse wraps the course listing.
type CourseListResponse struct {
	Courses []CourseView `json:"courses"`
}

// HandleListCourses handles GET /api/v1/courses. An optional ?q= filters
// the list by semantic match.
func (h *CourseHandler) HandleListCourses(c echo.Context) error {
	ctx := c.Request().Context()
	token := middleware.CanvasToken(c)

	courses, err := h.courses.ListCourses(ctx, token)
	if err != nil {
		return err
	}

	if query := c.QueryParam("q"); query != "" {
		matched, err := h.namer.SemanticSearch(ctx, query, courses)
		if err != nil {
			return err
		}
		keep := make(map[int]bool, len(matched))
		for _, id := range matched {
			keep[id] = true
		}
		filtered := courses[:0]
		for _, course := range courses {
			if keep[course.ID] {
				filtered = append(filtered, course)
			}
		}
		courses = filtered
	}

	names, err := h.namer.FriendlyNames(ctx, courses)
	if err != nil {
		// The raw Canvas names are still usable; don't fail the listing.
		h.logger.WarnContext(ctx, "friendly course names unavailable", "error", err)
		names = nil
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		view := CourseView{
			ID:         course.ID,
			Name:       course.Name,
			CourseCode: course.CourseCode,
			ShortName:  course.CourseCode,
			FullName:   course.Name,
		}
		if friendly, ok := names[course.ID]; ok {
			view.ShortName = friendly.Short
			view.FullName = friendly.Full
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, CourseListResponse{Courses: views})
}

// HandleCourseContent handles GET /api/v1/courses/:courseId/content.
func (h *CourseHandler) HandleCourseContent(c echo.Context) error {
	ctx := c.Request().Context()
	token := middleware.CanvasToken(c)

	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	content, err := h.courses.CourseContent(ctx, token, courseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

func courseIDParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("courseId"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid course id")
	}
	return id, nil
}
