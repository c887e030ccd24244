package repository

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognify/domain"
)

func newTestStatsRepo(t *testing.T) (*statsRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := &statsRepository{
		db:     mock,
		now:    func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) },
		logger: slog.New(slog.DiscardHandler),
	}
	return repo, mock
}

func TestRecordSession(t *testing.T) {
	repo, mock := newTestStatsRepo(t)

	session := &domain.StudySession{
		CanvasUserID:    7,
		UserName:        "Ada",
		CourseID:        42,
		Score:           8,
		TotalQuestions:  10,
		DurationSeconds: 300,
	}

	mock.ExpectExec("INSERT INTO study_sessions").
		WithArgs(pgxmock.AnyArg(), 7, "Ada", 42, 8, 10, 300, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.RecordSession(context.Background(), session)
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID, "missing id is generated")
	assert.False(t, session.CompletedAt.IsZero(), "missing completion time is filled in")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStats(t *testing.T) {
	repo, mock := newTestStatsRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"today", "week", "total", "questions", "avg"}).
			AddRow(2, 5, 30, 240, 81.5))

	// Sessions on the 10th, 9th, 8th, then a gap.
	mock.ExpectQuery("SELECT DISTINCT").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"day"}).
			AddRow(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))

	stats, err := repo.DashboardStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SessionsToday)
	assert.Equal(t, 5, stats.SessionsThisWeek)
	assert.Equal(t, 30, stats.SessionsTotal)
	assert.Equal(t, 240, stats.QuestionsAnswered)
	assert.InDelta(t, 81.5, stats.AverageScore, 0.001)
	assert.Equal(t, 3, stats.StreakDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseLeaderboard(t *testing.T) {
	repo, mock := newTestStatsRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs(42, 10).
		WillReturnRows(pgxmock.NewRows([]string{"canvas_user_id", "user_name", "sessions", "questions", "avg", "best"}).
			AddRow(7, "Ada", 12, 120, 92.0, 10).
			AddRow(8, "Grace", 9, 90, 85.5, 9))

	entries, err := repo.CourseLeaderboard(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Ada", entries[0].UserName)
	assert.Equal(t, 92.0, entries[0].AverageScore)
	assert.Equal(t, 10, entries[0].BestScore)
	assert.Equal(t, "Grace", entries[1].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := map[string]struct {
		days []time.Time
		want int
	}{
		"no sessions":            {nil, 0},
		"today only":             {[]time.Time{day(10)}, 1},
		"ends yesterday":         {[]time.Time{day(9), day(8)}, 2},
		"gap before today":       {[]time.Time{day(10), day(8)}, 1},
		"stale streak":           {[]time.Time{day(5), day(4), day(3)}, 0},
		"long run through today": {[]time.Time{day(10), day(9), day(8), day(7)}, 4},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, countStreak(tc.days, now))
		})
	}
}
