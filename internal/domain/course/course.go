package course

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrIDRequired    = errors.New("course: id is required")
	ErrTitleRequired = errors.New("course: title is required")
	ErrLessonTitle   = errors.New("course: lesson title is required")
	ErrNoLessons     = errors.New("course: publishing requires at least one lesson")
	ErrNotDraft      = errors.New("course: only drafts can be published")
	ErrArchived      = errors.New("course: archived courses cannot be modified")
	ErrUnknownStatus = errors.New("course: unknown status")
	ErrNotFound      = errors.New("course: not found")
)

type ID string

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusArchived:
		return StatusArchived, nil
	default:
		return "", ErrUnknownStatus
	}
}

type Lesson struct {
	ID       string
	Title    string
	Body     string
	VideoURL string
	Position int
}

type Course struct {
	ID          ID
	Title       string
	Description string
	CoverURL    string
	Status      Status
	Lessons     []Lesson
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	ID          ID
	Title       string
	Description string
	CoverURL    string
	Now         time.Time
}

func New(params CreateParams) (*Course, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Course{
		ID:          ID(id),
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		CoverURL:    strings.TrimSpace(params.CoverURL),
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type UpdateParams struct {
	Title       *string
	Description *string
	CoverURL    *string
	Lessons     []Lesson
}

func (c *Course) Apply(params UpdateParams, now time.Time) error {
	if c.Status == StatusArchived {
		return ErrArchived
	}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return ErrTitleRequired
		}
		c.Title = title
	}
	if params.Description != nil {
		c.Description = strings.TrimSpace(*params.Description)
	}
	if params.CoverURL != nil {
		c.CoverURL = strings.TrimSpace(*params.CoverURL)
	}
	if params.Lessons != nil {
		lessons, err := normalizeLessons(params.Lessons)
		if err != nil {
			return err
		}
		c.Lessons = lessons
	}
	c.touch(now)
	return nil
}

func (c *Course) Publish(now time.Time) error {
	if c.Status != StatusDraft {
		return ErrNotDraft
	}
	if len(c.Lessons) == 0 {
		return ErrNoLessons
	}
	c.Status = StatusPublished
	c.touch(now)
	return nil
}

func (c *Course) Archive(now time.Time) {
	c.Status = StatusArchived
	c.touch(now)
}

func (c *Course) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	c.UpdatedAt = now.UTC()
}

func normalizeLessons(lessons []Lesson) ([]Lesson, error) {
	out := make([]Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		lesson.Title = strings.TrimSpace(lesson.Title)
		if lesson.Title == "" {
			return nil, ErrLessonTitle
		}
		out = append(out, lesson)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	for i := range out {
		out[i].Position = i
	}
	return out, nil
}

type Repository interface {
	Save(ctx context.Context, c *Course) error
	ByID(ctx context.Context, id ID) (*Course, error)
	// List returns courses newest first; onlyPublished filters drafts and
	// archived courses out for the member-facing catalog.
	List(ctx context.Context, onlyPublished bool) ([]*Course, error)
}
