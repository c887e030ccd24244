package service

import (
	"context"

	"cognify/domain"
	"cognify/driver/webfetch"
)

// CanvasAPI is the slice of the Canvas client the services depend on.
type CanvasAPI interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	Courses(ctx context.Context, token string) ([]domain.Course, error)
	CourseWithSyllabus(ctx context.Context, token string, courseID int) (*domain.Course, error)
	ModulesWithItems(ctx context.Context, token string, courseID int) ([]domain.Module, error)
	Pages(ctx context.Context, token string, courseID int) ([]domain.PageSummary, error)
	Page(ctx context.Context, token string, courseID int, slug string) (*domain.Page, error)
	Files(ctx context.Context, token string, courseID int) ([]domain.CanvasFile, error)
	File(ctx context.Context, token string, fileID int) (*domain.CanvasFile, error)
	Assignment(ctx context.Context, token string, courseID, assignmentID int) (*domain.Assignment, error)
	DownloadFile(ctx context.Context, token, fileURL string) ([]byte, string, error)
}

// Fetcher downloads third-party URLs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*webfetch.Result, error)
}

// AggregatorService assembles a study corpus from a content selection.
type AggregatorService interface {
	BuildCorpus(ctx context.Context, token string, courseID int, sel domain.ContentSelection) (string, error)
}

// CourseContent is everything the content picker offers for one course.
type CourseContent struct {
	Course      domain.Course        `json:"course"`
	Modules     []domain.Module      `json:"modules"`
	Files       []domain.CanvasFile  `json:"files"`
	Pages       []domain.PageSummary `json:"pages"`
	HasSyllabus bool                 `json:"has_syllabus"`
}

// CourseService lists courses and their selectable content.
type CourseService interface {
	ListCourses(ctx context.Context, token string) ([]domain.Course, error)
	CourseContent(ctx context.Context, token string, courseID int) (*CourseContent, error)
}

// StudyQuestion is one multiple-choice question from the LLM.
type StudyQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// ExamQuestion is one question of a mock exam. Options is set only for
// multiple-choice questions; Answer is the answer key.
type ExamQuestion struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
	Points   int      `json:"points"`
}

// ExamSection groups exam questions of one type.
type ExamSection struct {
	Name      string         `json:"name"`
	Questions []ExamQuestion `json:"questions"`
}

// MockExam is a full generated final exam.
type MockExam struct {
	Title        string        `json:"title"`
	Instructions string        `json:"instructions"`
	TotalPoints  int           `json:"totalPoints"`
	Sections     []ExamSection `json:"sections"`
}

// QuizService turns a corpus into study questions or a mock exam.
type QuizService interface {
	GenerateQuiz(ctx context.Context, courseName, corpus string, count int) ([]StudyQuestion, error)
	GenerateMockExam(ctx context.Context, corpus string) (*MockExam, error)
}

// FriendlyName is a cleaned-up course display name pair.
type FriendlyName struct {
	Short string `json:"short"`
	Full  string `json:"full"`
}

// CourseNamer produces display names and semantic search over courses.
type CourseNamer interface {
	FriendlyNames(ctx context.Context, courses []domain.Course) (map[int]FriendlyName, error)
	SemanticSearch(ctx context.Context, query string, courses []domain.Course) ([]int, error)
}
