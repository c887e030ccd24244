package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"cognify/config"
	"cognify/decoder"
	"cognify/driver/canvas"
	"cognify/driver/postgres"
	"cognify/driver/webfetch"
	"cognify/handler"
	"cognify/repository"
	"cognify/service"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	DBPool        *pgxpool.Pool
	HealthHandler *handler.HealthHandler
	CourseHandler *handler.CourseHandler
	StudyHandler  *handler.StudyHandler
	UploadHandler *handler.UploadHandler
	StatsHandler  *handler.StatsHandler
	Logger        *slog.Logger
}

// BuildDependencies constructs all application dependencies.
// Returns a cleanup function that should be deferred.
func BuildDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Dependencies, func(), error) {
	pool, err := postgres.Init(ctx, cfg.Database.URL, log)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Drivers
	canvasClient := canvas.NewClient(cfg.Canvas.BaseURL, log)
	fetcher := webfetch.NewFetcher(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst, log)
	llm := service.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.BaseURL)
	decoders := decoder.DefaultRegistry()

	// Repositories
	uploadRepo := repository.NewUploadRepository(log)
	statsRepo := repository.NewStatsRepository(pool, log)

	// Services
	aggregator := service.NewAggregatorService(canvasClient, fetcher, uploadRepo, decoders, log)
	courses := service.NewCourseService(canvasClient, decoders, log)
	namer := service.NewCourseNamer(llm, cfg.Groq.Model, log)
	quizzes := service.NewQuizService(llm, cfg.Groq.Model, log)

	// Handlers
	deps := &Dependencies{
		DBPool:        pool,
		HealthHandler: handler.NewHealthHandler(cfg.Logging.ServiceName),
		CourseHandler: handler.NewCourseHandler(courses, namer, log),
		StudyHandler:  handler.NewStudyHandler(aggregator, quizzes, log),
		UploadHandler: handler.NewUploadHandler(uploadRepo, decoders, log),
		StatsHandler:  handler.NewStatsHandler(canvasClient, statsRepo, log),
		Logger:        log,
	}

	cleanup := func() {
		pool.Close()
	}
	return deps, cleanup, nil
}
