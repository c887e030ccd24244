package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognify/domain"
)

type fakeUserResolver struct {
	user *domain.User
	err  error
}

func (f *fakeUserResolver) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	return f.user, f.err
}

type fakeStats struct {
	recorded    []*domain.StudySession
	dashboard   *domain.DashboardStats
	leaderboard []domain.LeaderboardEntry
	err         error
}

func (f *fakeStats) RecordSession(ctx context.Context, session *domain.StudySession) error {
	f.recorded = append(f.recorded, session)
	return f.err
}

func (f *fakeStats) DashboardStats(ctx context.Context, canvasUserID int) (*domain.DashboardStats, error) {
	return f.dashboard, f.err
}

func (f *fakeStats) CourseLeaderboard(ctx context.Context, courseID, limit int) ([]domain.LeaderboardEntry, error) {
	return f.leaderboard, f.err
}

func TestHandleRecordSession(t *testing.T) {
	resolver := &fakeUserResolver{user: &domain.User{ID: 7, Name: "Ada"}}
	stats := &fakeStats{}
	h := NewStatsHandler(resolver, stats, slog.New(slog.DiscardHandler))

	body := `{"course_id": 42, "score": 8, "total_questions": 10, "duration_seconds": 300}`
	c, rec := newEchoContext(t, http.MethodPost, "/api/v1/sessions", &body)

	require.NoError(t, h.HandleRecordSession(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, stats.recorded, 1)
	session := stats.recorded[0]
	assert.Equal(t, 7, session.CanvasUserID)
	assert.Equal(t, "Ada", session.UserName)
	assert.Equal(t, 42, session.CourseID)
	assert.Equal(t, 8, session.Score)
	assert.Equal(t, 10, session.TotalQuestions)
	assert.Equal(t, 300, session.DurationSeconds)
}

func TestHandleRecordSessionValidation(t *testing.T) {
	tests := map[string]string{
		"missing course":           `{"score": 8, "total_questions": 10}`,
		"missing total questions":  `{"course_id": 42, "score": 8}`,
		"negative score":           `{"course_id": 42, "score": -1, "total_questions": 10}`,
		"score above question cap": `{"course_id": 42, "score": 11, "total_questions": 10}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			h := NewStatsHandler(&fakeUserResolver{user: &domain.User{ID: 7}}, &fakeStats{}, slog.New(slog.DiscardHandler))
			payload := body
			c, _ := newEchoContext(t, http.MethodPost, "/api/v1/sessions", &payload)

			err := h.HandleRecordSession(c)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestHandleRecordSessionAuthFailure(t *testing.T) {
	resolver := &fakeUserResolver{err: domain.ErrNotAuthenticated}
	h := NewStatsHandler(resolver, &fakeStats{}, slog.New(slog.DiscardHandler))

	body := `{"course_id": 42, "score": 8, "total_questions": 10}`
	c, _ := newEchoContext(t, http.MethodPost, "/api/v1/sessions", &body)

	err := h.HandleRecordSession(c)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestHandleDashboard(t *testing.T) {
	resolver := &fakeUserResolver{user: &domain.User{ID: 7, Name: "Ada"}}
	stats := &fakeStats{dashboard: &domain.DashboardStats{
		SessionsToday: 2,
		SessionsTotal: 14,
		AverageScore:  82.5,
		StreakDays:    3,
	}}
	h := NewStatsHandler(resolver, stats, slog.New(slog.DiscardHandler))

	c, rec := newEchoContext(t, http.MethodGet, "/api/v1/stats/dashboard", nil)
	require.NoError(t, h.HandleDashboard(c))

	var dash domain.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, 2, dash.SessionsToday)
	assert.Equal(t, 3, dash.StreakDays)
}

func TestHandleLeaderboard(t *testing.T) {
	stats := &fakeStats{leaderboard: []domain.LeaderboardEntry{
		{CanvasUserID: 7, UserName: "Ada", Sessions: 5, AverageScore: 90},
	}}
	h := NewStatsHandler(&fakeUserResolver{}, stats, slog.New(slog.DiscardHandler))

	c, rec := newEchoContext(t, http.MethodGet, "/api/v1/courses/42/leaderboard", nil)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	require.NoError(t, h.HandleLeaderboard(c))

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Ada", resp.Entries[0].UserName)
}

func TestHandleLeaderboardBadLimit(t *testing.T) {
	h := NewStatsHandler(&fakeUserResolver{}, &fakeStats{}, slog.New(slog.DiscardHandler))

	for _, limit := range []string{"0", "-5", "500", "ten"} {
		c, _ := newEchoContext(t, http.MethodGet, "/api/v1/courses/42/leaderboard?limit="+limit, nil)
		c.SetParamNames("courseId")
		c.SetParamValues("42")

		err := h.HandleLeaderboard(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, limit)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}
