package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cognify/domain"
)

// DB is the subset of pgxpool.Pool the stats repository uses. Declared as
// an interface so tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsRepository implementation backed by PostgreSQL.
type statsRepository struct {
	db     DB
	now    func() time.Time
	logger *slog.Logger
}

// NewStatsRepository creates a stats repository on the given pool.
func NewStatsRepository(db DB, logger *slog.Logger) StatsRepository {
	return &statsRepository{db: db, now: time.Now, logger: logger}
}

const insertSessionQuery = `
	INSERT INTO study_sessions
		(id, canvas_user_id, user_name, course_id, score, total_questions, duration_seconds, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// RecordSession persists one completed study session. A missing id or
// completion time is filled in here.
func (r *statsRepository) RecordSession(ctx context.Context, session *domain.StudySession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CompletedAt.IsZero() {
		session.CompletedAt = r.now().UTC()
	}

	_, err := r.db.Exec(ctx, insertSessionQuery,
		session.ID, session.CanvasUserID, session.UserName, session.CourseID,
		session.Score, session.TotalQuestions, session.DurationSeconds, session.CompletedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to record study session",
			"error", err, "canvas_user_id", session.CanvasUserID, "course_id", session.CourseID)
		return fmt.Errorf("record study session: %w", err)
	}

	r.logger.InfoContext(ctx, "study session recorded",
		"session_id", session.ID, "course_id", session.CourseID,
		"score", session.Score, "total_questions", session.TotalQuestions)
	return nil
}

const dashboardStatsQuery = `
	SELECT
		COUNT(*) FILTER (WHERE completed_at >= date_trunc('day', now())),
		COUNT(*) FILTER (WHERE completed_at >= now() - interval '7 days'),
		COUNT(*),
		COALESCE(SUM(total_questions), 0),
		COALESCE(AVG(CASE WHEN total_questions > 0
			THEN score::float * 100 / total_questions END), 0)
	FROM study_sessions
	WHERE canvas_user_id = $1
`

const sessionDaysQuery = `
	SELECT DISTINCT (completed_at AT TIME ZONE 'UTC')::date AS day
	FROM study_sessions
	WHERE canvas_user_id = $1
	ORDER BY day DESC
`

// DashboardStats aggregates a user's sessions into dashboard counters.
func (r *statsRepository) DashboardStats(ctx context.Context, canvasUserID int) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := r.db.QueryRow(ctx, dashboardStatsQuery, canvasUserID).Scan(
		&stats.SessionsToday, &stats.SessionsThisWeek, &stats.SessionsTotal,
		&stats.QuestionsAnswered, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats for user %d: %w", canvasUserID, err)
	}

	streak, err := r.streakDays(ctx, canvasUserID)
	if err != nil {
		return nil, err
	}
	stats.StreakDays = streak

	return &stats, nil
}

// streakDays counts consecutive study days ending today or yesterday.
// Yesterday still counts so a streak does not die before the day is over.
func (r *statsRepository) streakDays(ctx context.Context, canvasUserID int) (int, error) {
	rows, err := r.db.Query(ctx, sessionDaysQuery, canvasUserID)
	if err != nil {
		return 0, fmt.Errorf("session days for user %d: %w", canvasUserID, err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("scan session day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate session days: %w", err)
	}

	return countStreak(days, r.now().UTC()), nil
}

// countStreak walks distinct study days (descending) and counts how many
// run back consecutively from today or yesterday.
func countStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := now.Truncate(24 * time.Hour)
	expected := today
	if !sameDay(days[0], today) {
		expected = today.AddDate(0, 0, -1)
		if !sameDay(days[0], expected) {
			return 0
		}
	}

	streak := 0
	for _, day := range days {
		if !sameDay(day, expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

const leaderboardQuery = `
	SELECT
		canvas_user_id,
		MAX(user_name),
		COUNT(*),
		COALESCE(SUM(total_questions), 0),
		COALESCE(AVG(CASE WHEN total_questions > 0
			THEN score::float * 100 / total_questions END), 0) AS avg_score,
		MAX(score)
	FROM study_sessions
	WHERE course_id = $1
	GROUP BY canvas_user_id
	ORDER BY avg_score DESC, COUNT(*) DESC
	LIMIT $2
`

// CourseLeaderboard ranks a course's users by average score.
func (r *statsRepository) CourseLeaderboard(ctx context.Context, courseID, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, leaderboardQuery, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.CanvasUserID, &e.UserName, &e.Sessions,
			&e.QuestionsTotal, &e.AverageScore, &e.BestScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}
