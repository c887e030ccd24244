package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cognify/domain"
	"cognify/middleware"
	"cognify/repository"
)

const defaultLeaderboardSize = 10

// UserResolver resolves the acting Canvas user from a bearer token.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// StatsHandler records study sessions and serves the aggregates built
// from them. The acting user is resolved from the Canvas token, never
// from the request body.
type StatsHandler struct {
	canvas UserResolver
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(canvas UserResolver, stats repository.StatsRepository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{canvas: canvas, stats: stats, logger: logger}
}

// SessionRequest is the body of POST /api/v1/sessions.
type SessionRequest struct {
	CourseID        int `json:"course_id"`
	Score           int `json:"score"`
	TotalQuestions  int `json:"total_questions"`
	DurationSeconds int `json:"duration_seconds"`
}

// HandleRecordSession handles POST /api/v1/sessions.
func (h *StatsHandler) HandleRecordSession(c echo.Context) error {
	ctx := c.Request().Context()
	token := middleware.CanvasToken(c)

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to bind session request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CourseID <= 0 || req.TotalQuestions <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "course_id and total_questions are required")
	}
	if req.Score < 0 || req.Score > req.TotalQuestions {
		return echo.NewHTTPError(http.StatusBadRequest, "score must be between 0 and total_questions")
	}

	user, err := h.canvas.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	session := &domain.StudySession{
		CanvasUserID:    user.ID,
		UserName:        user.Name,
		CourseID:        req.CourseID,
		Score:           req.Score,
		TotalQuestions:  req.TotalQuestions,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.stats.RecordSession(ctx, session); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "recorded"})
}

// HandleDashboard handles GET /api/v1/stats/dashboard.
func (h *StatsHandler) HandleDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	token := middleware.CanvasToken(c)

	user, err := h.canvas.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	stats, err := h.stats.DashboardStats(ctx, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// LeaderboardResponse wraps the per-course leaderboard.
type LeaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// HandleLeaderboard handles GET /api/v1/courses/:courseId/leaderboard.
func (h *StatsHandler) HandleLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	limit := defaultLeaderboardSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		limit = parsed
	}

	entries, err := h.stats.CourseLeaderboard(ctx, courseID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LeaderboardResponse{Entries: entries})
}
