package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	contentsvc "memberhub/internal/app/services/content"
	domaincourse "memberhub/internal/domain/course"
	"memberhub/internal/infra/storage/memory"
)

func newContentService(t *testing.T) *contentsvc.Service {
	t.Helper()
	return &contentsvc.Service{
		Courses: memory.NewCourseRepository(),
		Clock:   func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func createPublished(t *testing.T, svc *contentsvc.Service, title string) *domaincourse.Course {
	t.Helper()
	ctx := context.Background()
	c, err := svc.Create(ctx, contentsvc.CreateParams{Title: title})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.Update(ctx, c.ID, domaincourse.UpdateParams{
		Lessons: []domaincourse.Lesson{{ID: "l1", Title: "Intro"}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	published, err := svc.Publish(ctx, c.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	return published
}

func TestMemberCatalogOnlyShowsPublished(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	createPublished(t, svc, "Go basics")
	if _, err := svc.Create(ctx, contentsvc.CreateParams{Title: "Unfinished draft"}); err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	catalog, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(catalog) != 1 || catalog[0].Title != "Go basics" {
		t.Fatalf("expected only the published course, got %+v", catalog)
	}

	adminView, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List admin: %v", err)
	}
	if len(adminView) != 2 {
		t.Fatalf("expected both courses for admins, got %d", len(adminView))
	}
}

func TestGetHidesDraftFromMembers(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, contentsvc.CreateParams{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Get(ctx, draft.ID, false); !errors.Is(err, domaincourse.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for member view, got %v", err)
	}
	if _, err := svc.Get(ctx, draft.ID, true); err != nil {
		t.Fatalf("admin view: %v", err)
	}
}

func TestPublishGuards(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	empty, err := svc.Create(ctx, contentsvc.CreateParams{Title: "Empty"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Publish(ctx, empty.ID); !errors.Is(err, domaincourse.ErrNoLessons) {
		t.Fatalf("expected ErrNoLessons, got %v", err)
	}

	published := createPublished(t, svc, "Done")
	if _, err := svc.Publish(ctx, published.ID); !errors.Is(err, domaincourse.ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft, got %v", err)
	}
}

func TestArchiveFreezesCourse(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	c := createPublished(t, svc, "Retired")
	archived, err := svc.Archive(ctx, c.ID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archived.Status != domaincourse.StatusArchived {
		t.Fatalf("expected archived, got %q", archived.Status)
	}
	title := "Renamed"
	if _, err := svc.Update(ctx, c.ID, domaincourse.UpdateParams{Title: &title}); !errors.Is(err, domaincourse.ErrArchived) {
		t.Fatalf("expected ErrArchived, got %v", err)
	}
}
