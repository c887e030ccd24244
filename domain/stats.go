package domain

import "time"

// StudySession is one completed quiz or mock-exam run.
type StudySession struct {
	ID              string    `json:"id"`
	CanvasUserID    int       `json:"canvas_user_id"`
	UserName        string    `json:"user_name"`
	CourseID        int       `json:"course_id"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"total_questions"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

// DashboardStats summarizes a user's study activity.
type DashboardStats struct {
	SessionsToday     int     `json:"sessions_today"`
	SessionsThisWeek  int     `json:"sessions_this_week"`
	SessionsTotal     int     `json:"sessions_total"`
	QuestionsAnswered int     `json:"questions_answered"`
	AverageScore      float64 `json:"average_score"`
	StreakDays        int     `json:"streak_days"`
}

// LeaderboardEntry is one user's aggregate standing within a course.
type LeaderboardEntry struct {
	CanvasUserID   int     `json:"canvas_user_id"`
	UserName       string  `json:"user_name"`
	Sessions       int     `json:"sessions"`
	QuestionsTotal int     `json:"questions_total"`
	AverageScore   float64 `json:"average_score"`
	BestScore      int     `json:"best_score"`
}
