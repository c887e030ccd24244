package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"cognify/domain"
	"cognify/middleware"
	"cognify/service"
)

// StudyHandler turns a content selection into generated study material.
type StudyHandler struct {
	aggregator service.AggregatorService
	quizzes    service.QuizService
	logger     *slog.Logger
}

// NewStudyHandler creates a new study handler.
func NewStudyHandler(aggregator service.AggregatorService, quizzes service.QuizService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{aggregator: aggregator, quizzes: quizzes, logger: logger}
}

// QuizRequest is the body of POST /courses/:courseId/quiz.
type QuizRequest struct {
	Selection     domain.ContentSelection `json:"selection"`
	CourseName    string                  `json:"course_name"`
	QuestionCount int                     `json:"question_count"`
}

// QuizResponse carries the generated questions.
type QuizResponse struct {
	Questions []service.StudyQuestion `json:"questions"`
}

// HandleGenerateQuiz handles POST /api/v1/courses/:courseId/quiz.
func (h *StudyHandler) HandleGenerateQuiz(c echo.Context) error {
	ctx := c.Request().Context()
	token := middleware.CanvasToken(c)

	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	var req QuizRequest
	if err := c.Bind(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to bind quiz request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CourseName == "" {
		req.CourseName = "this course"
	}

	corpus, err := h.aggregator.BuildCorpus(ctx, token, courseID, req.Selection)
	if err != nil {
		return err
	}

	questions, err := h.quizzes.GenerateQuiz(ctx, req.CourseName, corpus, req.QuestionCount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuizResponse{Questions: questions})
}

// MockExamRequest is the body of POST /courses/:courseId/mock-exam.
type MockExamRequest struct {
	Selection domain.ContentSelection `json:"selection"`
}

// HandleGenerateMockExam handles POST /api/v1/courses/:courseId/mock-exam.
func (h *StudyHandler) HandleGenerateMockExam(c echo.Context) error {
	ctx := c.Request().Context()
	token := middleware.CanvasToken(c)

	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	var req MockExamRequest
	if err := c.Bind(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to bind mock exam request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	corpus, err := h.aggregator.BuildCorpus(ctx, token, courseID, req.Selection)
	if err != nil {
		return err
	}

	exam, err := h.quizzes.GenerateMockExam(ctx, corpus)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exam)
}
