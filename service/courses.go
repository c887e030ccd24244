package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"cognify/decoder"
	"cognify/domain"
)

type courseService struct {
	canvas   CanvasAPI
	decoders *decoder.Registry
	logger   *slog.Logger
}

// NewCourseService returns a CourseService over the Canvas API.
func NewCourseService(canvas CanvasAPI, decoders *decoder.Registry, logger *slog.Logger) CourseService {
	return &courseService{canvas: canvas, decoders: decoders, logger: logger}
}

func (s *courseService) ListCourses(ctx context.Context, token string) ([]domain.Course, error) {
	return s.canvas.Courses(ctx, token)
}

// CourseContent gathers everything selectable for one course: its modules
// with items, readable files, pages, and whether a syllabus exists. The
// four listings are independent, so they load concurrently.
func (s *courseService) CourseContent(ctx context.Context, token string, courseID int) (*CourseContent, error) {
	content := &CourseContent{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		course, err := s.canvas.CourseWithSyllabus(gctx, token, courseID)
		if err != nil {
			return err
		}
		content.Course = *course
		content.HasSyllabus = strings.TrimSpace(course.SyllabusBody) != ""
		// The syllabus body can be huge; the picker only needs to know
		// it exists.
		content.Course.SyllabusBody = ""
		return nil
	})

	g.Go(func() error {
		modules, err := s.canvas.ModulesWithItems(gctx, token, courseID)
		if err != nil {
			return err
		}
		content.Modules = modules
		return nil
	})

	g.Go(func() error {
		files, err := s.canvas.Files(gctx, token, courseID)
		if err != nil {
			// Many courses hide the files tab; the picker still works
			// without it.
			s.logger.WarnContext(gctx, "course files listing unavailable",
				"course_id", courseID, "error", err)
			return nil
		}
		readable := make([]domain.CanvasFile, 0, len(files))
		for _, f := range files {
			if s.decoders.IsReadable(f.ContentType, f.DisplayName) {
				readable = append(readable, f)
			}
		}
		content.Files = readable
		return nil
	})

	g.Go(func() error {
		pages, err := s.canvas.Pages(gctx, token, courseID)
		if err != nil {
			s.logger.WarnContext(gctx, "course pages listing unavailable",
				"course_id", courseID, "error", err)
			return nil
		}
		content.Pages = pages
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return content, nil
}
