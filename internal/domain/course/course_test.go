package course_test

import (
	"errors"
	"testing"
	"time"

	"memberhub/internal/domain/course"
)

func draftCourse(t *testing.T) *course.Course {
	t.Helper()
	c, err := course.New(course.CreateParams{
		ID:    "course-1",
		Title: "Go from scratch",
		Now:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestPublishRequiresLessons(t *testing.T) {
	c := draftCourse(t)

	if err := c.Publish(time.Now()); !errors.Is(err, course.ErrNoLessons) {
		t.Fatalf("expected ErrNoLessons, got %v", err)
	}

	err := c.Apply(course.UpdateParams{
		Lessons: []course.Lesson{{ID: "l1", Title: "Intro"}},
	}, time.Now())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := c.Publish(time.Now()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if c.Status != course.StatusPublished {
		t.Fatalf("expected published, got %q", c.Status)
	}
}

func TestPublishOnlyFromDraft(t *testing.T) {
	c := draftCourse(t)
	if err := c.Apply(course.UpdateParams{Lessons: []course.Lesson{{ID: "l1", Title: "Intro"}}}, time.Now()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := c.Publish(time.Now()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := c.Publish(time.Now()); !errors.Is(err, course.ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft, got %v", err)
	}
}

func TestArchivedCourseRejectsChanges(t *testing.T) {
	c := draftCourse(t)
	c.Archive(time.Now())

	title := "New title"
	if err := c.Apply(course.UpdateParams{Title: &title}, time.Now()); !errors.Is(err, course.ErrArchived) {
		t.Fatalf("expected ErrArchived, got %v", err)
	}
}

func TestApplyOrdersLessonsByPosition(t *testing.T) {
	c := draftCourse(t)

	err := c.Apply(course.UpdateParams{
		Lessons: []course.Lesson{
			{ID: "l3", Title: "Wrap up", Position: 10},
			{ID: "l1", Title: "Intro", Position: 1},
			{ID: "l2", Title: "Middle", Position: 5},
		},
	}, time.Now())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"l1", "l2", "l3"}
	for i, lesson := range c.Lessons {
		if lesson.ID != want[i] {
			t.Fatalf("expected lesson %q at index %d, got %q", want[i], i, lesson.ID)
		}
		if lesson.Position != i {
			t.Fatalf("expected position %d, got %d", i, lesson.Position)
		}
	}
}

func TestApplyRejectsUntitledLesson(t *testing.T) {
	c := draftCourse(t)

	err := c.Apply(course.UpdateParams{Lessons: []course.Lesson{{ID: "l1", Title: "  "}}}, time.Now())
	if !errors.Is(err, course.ErrLessonTitle) {
		t.Fatalf("expected ErrLessonTitle, got %v", err)
	}
}

func TestParseStatusStrict(t *testing.T) {
	if _, err := course.ParseStatus("  Published "); err != nil {
		t.Fatalf("expected published to parse, got %v", err)
	}
	if _, err := course.ParseStatus("live"); !errors.Is(err, course.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
