package moderation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	moderationsvc "memberhub/internal/app/services/moderation"
	domaincomment "memberhub/internal/domain/comment"
	domainmember "memberhub/internal/domain/member"
	"memberhub/internal/infra/storage/memory"
)

func newModerationService(t *testing.T) *moderationsvc.Service {
	t.Helper()
	members := memory.NewMemberRepository()
	author, err := domainmember.New(domainmember.CreateParams{
		ID:           "u1",
		Email:        "alice@example.com",
		Username:     "alice",
		DisplayName:  "Alice",
		PasswordHash: "hash",
		Roles:        []domainmember.Role{domainmember.RoleMember},
	})
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if err := members.Save(context.Background(), author); err != nil {
		t.Fatalf("save author: %v", err)
	}
	return &moderationsvc.Service{
		Comments: memory.NewCommentRepository(),
		Members:  members,
		Outbox:   memory.NewOutbox(),
		Clock:    func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func submitComment(t *testing.T, svc *moderationsvc.Service, body, commentContext string) *domaincomment.Comment {
	t.Helper()
	c, err := svc.Submit(context.Background(), moderationsvc.SubmitParams{
		AuthorID:     "u1",
		Body:         body,
		Context:      commentContext,
		ContextRefID: "ref-1",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return c
}

func TestSubmitStartsPending(t *testing.T) {
	svc := newModerationService(t)

	c := submitComment(t, svc, "nice course!", "course")
	if c.Status != domaincomment.StatusPending {
		t.Fatalf("expected pending, got %q", c.Status)
	}
	if c.Context != domaincomment.ContextCourse {
		t.Fatalf("expected course context, got %q", c.Context)
	}
}

func TestSubmitRejectsUnknownContext(t *testing.T) {
	svc := newModerationService(t)

	_, err := svc.Submit(context.Background(), moderationsvc.SubmitParams{
		AuthorID:     "u1",
		Body:         "hello",
		Context:      "blog",
		ContextRefID: "ref-1",
	})
	if !errors.Is(err, domaincomment.ErrUnknownContext) {
		t.Fatalf("expected ErrUnknownContext, got %v", err)
	}
}

func TestApproveClearsModeratorNote(t *testing.T) {
	svc := newModerationService(t)
	ctx := context.Background()

	c := submitComment(t, svc, "hello", "group")
	if _, err := svc.Reject(ctx, c.ID, "tone"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	approved, err := svc.Approve(ctx, c.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != domaincomment.StatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}
	if approved.ModeratorNote != "" {
		t.Fatalf("expected note cleared, got %q", approved.ModeratorNote)
	}
}

func TestRejectStoresNote(t *testing.T) {
	svc := newModerationService(t)

	c := submitComment(t, svc, "hello", "member_feed")
	rejected, err := svc.Reject(context.Background(), c.ID, "  spam  ")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != domaincomment.StatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}
	if rejected.ModeratorNote != "spam" {
		t.Fatalf("expected trimmed note, got %q", rejected.ModeratorNote)
	}
}

func TestListFilters(t *testing.T) {
	svc := newModerationService(t)
	ctx := context.Background()

	a := submitComment(t, svc, "one", "course")
	submitComment(t, svc, "two", "group")
	submitComment(t, svc, "three", "group")
	if _, err := svc.Approve(ctx, a.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	pending, total, err := svc.List(ctx, moderationsvc.ListParams{Status: "pending"})
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if total != 2 || len(pending) != 2 {
		t.Fatalf("expected 2 pending, got len=%d total=%d", len(pending), total)
	}
	for _, v := range pending {
		if v.AuthorName != "Alice" {
			t.Fatalf("author profile not joined: %q", v.AuthorName)
		}
	}

	groupOnly, total, err := svc.List(ctx, moderationsvc.ListParams{Context: "group"})
	if err != nil {
		t.Fatalf("List group: %v", err)
	}
	if total != 2 || len(groupOnly) != 2 {
		t.Fatalf("expected 2 group comments, got len=%d total=%d", len(groupOnly), total)
	}

	if _, _, err := svc.List(ctx, moderationsvc.ListParams{Status: "bogus"}); !errors.Is(err, domaincomment.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	svc := newModerationService(t)
	ctx := context.Background()

	submitComment(t, svc, "one", "group")
	submitComment(t, svc, "two", "group")
	submitComment(t, svc, "three", "group")

	page, total, err := svc.List(ctx, moderationsvc.ListParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 comment on last page, got %d", len(page))
	}
}

func TestDeleteComment(t *testing.T) {
	svc := newModerationService(t)
	ctx := context.Background()

	c := submitComment(t, svc, "bye", "tool")
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, domaincomment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
