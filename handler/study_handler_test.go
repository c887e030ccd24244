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
	"cognify/service"
)

type fakeAggregator struct {
	corpus       string
	err          error
	gotCourseID  int
	gotSelection domain.ContentSelection
}

func (f *fakeAggregator) BuildCorpus(ctx context.Context, token string, courseID int, sel domain.ContentSelection) (string, error) {
	f.gotCourseID = courseID
	f.gotSelection = sel
	return f.corpus, f.err
}

type fakeQuiz struct {
	questions     []service.StudyQuestion
	exam          *service.MockExam
	err           error
	gotCourseName string
	gotCorpus     string
	gotCount      int
}

func (f *fakeQuiz) GenerateQuiz(ctx context.Context, courseName, corpus string, count int) ([]service.StudyQuestion, error) {
	f.gotCourseName = courseName
	f.gotCorpus = corpus
	f.gotCount = count
	return f.questions, f.err
}

func (f *fakeQuiz) GenerateMockExam(ctx context.Context, corpus string) (*service.MockExam, error) {
	f.gotCorpus = corpus
	return f.exam, f.err
}

func TestHandleGenerateQuiz(t *testing.T) {
	aggregator := &fakeAggregator{corpus: "## Syllabus\n\nSorting."}
	quizzes := &fakeQuiz{questions: []service.StudyQuestion{
		{Question: "q", Options: []string{"A", "B", "C", "D"}, CorrectIndex: 1, Explanation: "e"},
	}}
	h := NewStudyHandler(aggregator, quizzes, slog.New(slog.DiscardHandler))

	body := `{"selection": {"file_ids": [100], "include_syllabus": true}, "course_name": "Algorithms", "question_count": 5}`
	c, rec := newEchoContext(t, http.MethodPost, "/api/v1/courses/42/quiz", &body)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	require.NoError(t, h.HandleGenerateQuiz(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 42, aggregator.gotCourseID)
	assert.Equal(t, []int{100}, aggregator.gotSelection.FileIDs)
	assert.True(t, aggregator.gotSelection.IncludeSyllabus)
	assert.Equal(t, "Algorithms", quizzes.gotCourseName)
	assert.Equal(t, aggregator.corpus, quizzes.gotCorpus)
	assert.Equal(t, 5, quizzes.gotCount)

	var resp QuizResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, 1, resp.Questions[0].CorrectIndex)
}

func TestHandleGenerateQuizDefaultCourseName(t *testing.T) {
	aggregator := &fakeAggregator{corpus: "content"}
	quizzes := &fakeQuiz{questions: []service.StudyQuestion{{Question: "q"}}}
	h := NewStudyHandler(aggregator, quizzes, slog.New(slog.DiscardHandler))

	body := `{"selection": {"include_syllabus": true}}`
	c, _ := newEchoContext(t, http.MethodPost, "/api/v1/courses/42/quiz", &body)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	require.NoError(t, h.HandleGenerateQuiz(c))
	assert.Equal(t, "this course", quizzes.gotCourseName)
}

func TestHandleGenerateQuizNoReadableContent(t *testing.T) {
	aggregator := &fakeAggregator{err: domain.ErrNoReadableContent}
	h := NewStudyHandler(aggregator, &fakeQuiz{}, slog.New(slog.DiscardHandler))

	body := `{"selection": {}}`
	c, _ := newEchoContext(t, http.MethodPost, "/api/v1/courses/42/quiz", &body)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	err := h.HandleGenerateQuiz(c)
	assert.ErrorIs(t, err, domain.ErrNoReadableContent)
}

func TestHandleGenerateQuizInvalidBody(t *testing.T) {
	h := NewStudyHandler(&fakeAggregator{}, &fakeQuiz{}, slog.New(slog.DiscardHandler))

	body := `{not json`
	c, _ := newEchoContext(t, http.MethodPost, "/api/v1/courses/42/quiz", &body)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	err := h.HandleGenerateQuiz(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleGenerateMockExam(t *testing.T) {
	aggregator := &fakeAggregator{corpus: "## Syllabus\n\nSorting."}
	quizzes := &fakeQuiz{exam: &service.MockExam{
		Title:       "Algorithms - Final Exam",
		TotalPoints: 100,
		Sections:    []service.ExamSection{{Name: "Section I: Multiple Choice"}},
	}}
	h := NewStudyHandler(aggregator, quizzes, slog.New(slog.DiscardHandler))

	body := `{"selection": {"page_slugs": ["week-1"]}}`
	c, rec := newEchoContext(t, http.MethodPost, "/api/v1/courses/42/mock-exam", &body)
	c.SetParamNames("courseId")
	c.SetParamValues("42")

	require.NoError(t, h.HandleGenerateMockExam(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"week-1"}, aggregator.gotSelection.PageSlugs)

	var exam service.MockExam
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exam))
	assert.Equal(t, "Algorithms - Final Exam", exam.Title)
	assert.Equal(t, 100, exam.TotalPoints)
}
