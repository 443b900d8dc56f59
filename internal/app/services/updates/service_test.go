package updates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	updatesvc "memberhub/internal/app/services/updates"
	domainmember "memberhub/internal/domain/member"
	domainupdate "memberhub/internal/domain/update"
	"memberhub/internal/infra/storage/memory"
)

type updatesFixture struct {
	svc      *updatesvc.Service
	receipts *memory.ReceiptStore
	now      time.Time
}

func newUpdatesFixture(t *testing.T) *updatesFixture {
	t.Helper()
	f := &updatesFixture{
		receipts: memory.NewReceiptStore(),
		now:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	members := memory.NewMemberRepository()
	admin, err := domainmember.New(domainmember.CreateParams{
		ID:           "admin-1",
		Email:        "admin@example.com",
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: "hash",
		Roles:        []domainmember.Role{domainmember.RoleAdmin, domainmember.RoleMember},
		CreatedAt:    f.now,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := members.Save(context.Background(), admin); err != nil {
		t.Fatalf("save admin: %v", err)
	}
	f.svc = &updatesvc.Service{
		Updates:  memory.NewUpdateRepository(),
		Receipts: f.receipts,
		Members:  members,
		Outbox:   memory.NewOutbox(),
		Clock:    func() time.Time { return f.now },
	}
	return f
}

func TestPublishAndListWithReadFlags(t *testing.T) {
	f := newUpdatesFixture(t)
	ctx := context.Background()

	first, err := f.svc.Publish(ctx, "admin-1", "Welcome", "We are live.")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	f.now = f.now.Add(time.Hour)
	second, err := f.svc.Publish(ctx, "admin-1", "Maintenance", "Short downtime tonight.")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := f.svc.MarkRead(ctx, "reader-1", first.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	views, err := f.svc.List(ctx, "reader-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(views))
	}
	if views[0].ID != second.ID {
		t.Fatalf("expected newest first, got %q", views[0].ID)
	}
	if views[0].Read {
		t.Fatalf("unread update reported as read")
	}
	if !views[1].Read {
		t.Fatalf("read update reported as unread")
	}
	if views[0].AuthorName != "Administrator" {
		t.Fatalf("author profile not joined: %q", views[0].AuthorName)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newUpdatesFixture(t)
	ctx := context.Background()

	u, err := f.svc.Publish(ctx, "admin-1", "Welcome", "We are live.")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := f.svc.MarkRead(ctx, "reader-1", u.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := f.svc.MarkRead(ctx, "reader-1", u.ID); err != nil {
		t.Fatalf("MarkRead repeat: %v", err)
	}
	if got := f.receipts.Count(); got != 1 {
		t.Fatalf("expected 1 receipt, got %d", got)
	}
}

func TestMarkReadUnknownUpdate(t *testing.T) {
	f := newUpdatesFixture(t)

	err := f.svc.MarkRead(context.Background(), "reader-1", "ghost")
	if !errors.Is(err, domainupdate.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkAllReadInsertsOnlyMissing(t *testing.T) {
	f := newUpdatesFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Publish(ctx, "admin-1", "One", "body")
	if _, err := f.svc.Publish(ctx, "admin-1", "Two", "body"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := f.svc.MarkRead(ctx, "reader-1", a.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	if err := f.svc.MarkAllRead(ctx, "reader-1"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if got := f.receipts.Count(); got != 2 {
		t.Fatalf("expected 2 receipts, got %d", got)
	}

	// All caught up: nothing to insert.
	if err := f.svc.MarkAllRead(ctx, "reader-1"); err != nil {
		t.Fatalf("MarkAllRead repeat: %v", err)
	}
	if got := f.receipts.Count(); got != 2 {
		t.Fatalf("expected receipt count unchanged, got %d", got)
	}

	views, err := f.svc.List(ctx, "reader-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, v := range views {
		if !v.Read {
			t.Fatalf("update %q still unread after MarkAllRead", v.ID)
		}
	}
}

func TestDeleteRemovesReceipts(t *testing.T) {
	f := newUpdatesFixture(t)
	ctx := context.Background()

	u, err := f.svc.Publish(ctx, "admin-1", "Welcome", "We are live.")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := f.svc.MarkRead(ctx, "reader-1", u.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := f.svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := f.receipts.Count(); got != 0 {
		t.Fatalf("expected receipts removed, got %d", got)
	}
	views, err := f.svc.List(ctx, "reader-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no updates, got %d", len(views))
	}
}
