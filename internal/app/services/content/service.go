package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domaincourse "memberhub/internal/domain/course"
)

// Service manages the course catalog: admin authoring plus the
// member-facing published view.
type Service struct {
	Courses domaincourse.Repository
	Logger  *slog.Logger
	Clock   func() time.Time
}

type CreateParams struct {
	Title       string
	Description string
	CoverURL    string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domaincourse.Course, error) {
	if s.Courses == nil {
		return nil, errRepositoryMissing
	}
	c, err := domaincourse.New(domaincourse.CreateParams{
		ID:          domaincourse.ID(uuid.NewString()),
		Title:       params.Title,
		Description: params.Description,
		CoverURL:    params.CoverURL,
		Now:         s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Courses.Save(ctx, c); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("course created", "course_id", c.ID, "title", c.Title)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id domaincourse.ID, params domaincourse.UpdateParams) (*domaincourse.Course, error) {
	if s.Courses == nil {
		return nil, errRepositoryMissing
	}
	c, err := s.Courses.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(params, s.now()); err != nil {
		return nil, err
	}
	if err := s.Courses.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Publish(ctx context.Context, id domaincourse.ID) (*domaincourse.Course, error) {
	if s.Courses == nil {
		return nil, errRepositoryMissing
	}
	c, err := s.Courses.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Publish(s.now()); err != nil {
		return nil, err
	}
	if err := s.Courses.Save(ctx, c); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("course published", "course_id", c.ID)
	}
	return c, nil
}

func (s *Service) Archive(ctx context.Context, id domaincourse.ID) (*domaincourse.Course, error) {
	if s.Courses == nil {
		return nil, errRepositoryMissing
	}
	c, err := s.Courses.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Archive(s.now())
	if err := s.Courses.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the catalog; members only see published courses.
func (s *Service) List(ctx context.Context, includeUnpublished bool) ([]*domaincourse.Course, error) {
	if s.Courses == nil {
		return nil, errRepositoryMissing
	}
	return s.Courses.List(ctx, !includeUnpublished)
}

// Get returns a course; non-admin callers only see published ones.
func (s *Service) Get(ctx context.Context, id domaincourse.ID, includeUnpublished bool) (*domaincourse.Course, error) {
	if s.Courses == nil {
		return nil, errRepositoryMissing
	}
	c, err := s.Courses.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeUnpublished && c.Status != domaincourse.StatusPublished {
		return nil, domaincourse.ErrNotFound
	}
	return c, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

var errRepositoryMissing = errors.New("content: course repository required")
