package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"cognify/config"
	appmiddleware "cognify/middleware"
)

// NewHTTPServer creates and configures the echo HTTP server.
func NewHTTPServer(deps *Dependencies, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.HTTPErrorHandler = appmiddleware.HTTPErrorHandler(deps.Logger)

	e.Use(appmiddleware.RequestIDMiddleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/v1/health"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			deps.Logger.InfoContext(ctx, "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("26M"))

	api := e.Group("/api/v1")
	api.GET("/health", deps.HealthHandler.HandleHealth)

	authed := api.Group("", appmiddleware.RequireCanvasToken(deps.Logger))
	authed.GET("/courses", deps.CourseHandler.HandleListCourses)
	authed.GET("/courses/:courseId/content", deps.CourseHandler.HandleCourseContent)
	authed.POST("/courses/:courseId/quiz", deps.StudyHandler.HandleGenerateQuiz)
	authed.POST("/courses/:courseId/mock-exam", deps.StudyHandler.HandleGenerateMockExam)
	authed.GET("/courses/:courseId/leaderboard", deps.StatsHandler.HandleLeaderboard)
	authed.POST("/uploads", deps.UploadHandler.HandleUpload)
	authed.POST("/sessions", deps.StatsHandler.HandleRecordSession)
	authed.GET("/stats/dashboard", deps.StatsHandler.HandleDashboard)

	server := e.Server
	server.ReadTimeout = cfg.Server.ReadTimeout
	server.WriteTimeout = cfg.Server.WriteTimeout

	return e
}

// StartHTTPServer starts the HTTP server in a goroutine.
func StartHTTPServer(e *echo.Echo, cfg *config.Config, log *slog.Logger) {
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()
}
