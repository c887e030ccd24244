// Package postgres owns the connection pool and the schema the stats
// repository runs on.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Init connects a pgx pool to the given database URL and verifies the
// connection with a ping.
func Init(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.InfoContext(ctx, "connected to database pool",
		"max_conns", config.MaxConns,
		"min_conns", config.MinConns)
	return pool, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS study_sessions (
		id               UUID PRIMARY KEY,
		canvas_user_id   BIGINT NOT NULL,
		user_name        TEXT NOT NULL,
		course_id        BIGINT NOT NULL,
		score            INT NOT NULL,
		total_questions  INT NOT NULL,
		duration_seconds INT NOT NULL,
		completed_at     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS study_sessions_user_idx
		ON study_sessions (canvas_user_id, completed_at DESC);
	CREATE INDEX IF NOT EXISTS study_sessions_course_idx
		ON study_sessions (course_id);
`

// EnsureSchema creates the study_sessions table and its indexes when they
// do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.InfoContext(ctx, "database schema ready")
	return nil
}
