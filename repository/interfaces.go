package repository

import (
	"context"

	"cognify/domain"
)

// UploadRepository stores user-uploaded document text between the upload
// request and the aggregation that consumes it.
type UploadRepository interface {
	Put(name, text string) string
	Get(id string) (*domain.UploadEntry, bool)
	GetMany(ids []string) []*domain.UploadEntry
	Delete(id string)
}

// StatsRepository persists completed study sessions and serves the
// aggregates built from them.
type StatsRepository interface {
	RecordSession(ctx context.Context, session *domain.StudySession) error
	DashboardStats(ctx context.Context, canvasUserID int) (*domain.DashboardStats, error)
	CourseLeaderboard(ctx context.Context, courseID, limit int) ([]domain.LeaderboardEntry, error)
}
