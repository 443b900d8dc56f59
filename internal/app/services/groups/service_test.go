package groups_test

import (
	"context"
	"errors"
	"testing"
	"time"

	groupssvc "memberhub/internal/app/services/groups"
	domaingroup "memberhub/internal/domain/group"
	domainmember "memberhub/internal/domain/member"
	"memberhub/internal/infra/storage/memory"
)

func newGroupsService(t *testing.T) *groupssvc.Service {
	t.Helper()
	members := memory.NewMemberRepository()
	for _, id := range []string{"u1", "u2"} {
		m, err := domainmember.New(domainmember.CreateParams{
			ID:           domainmember.ID(id),
			Email:        id + "@example.com",
			Username:     id,
			DisplayName:  id,
			PasswordHash: "hash",
			Roles:        []domainmember.Role{domainmember.RoleMember},
		})
		if err != nil {
			t.Fatalf("seed member %s: %v", id, err)
		}
		if err := members.Save(context.Background(), m); err != nil {
			t.Fatalf("save member %s: %v", id, err)
		}
	}
	return &groupssvc.Service{
		Groups:  memory.NewGroupRepository(),
		Members: members,
		Clock:   func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func TestCreateGroup(t *testing.T) {
	svc := newGroupsService(t)

	g, err := svc.Create(context.Background(), groupssvc.CreateParams{
		Name:        "Book club",
		Description: "We read things.",
		OwnerID:     "u1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Name != "Book club" {
		t.Fatalf("unexpected name %q", g.Name)
	}
	if g.OwnerID != "u1" {
		t.Fatalf("expected owner u1, got %q", g.OwnerID)
	}
}

func TestAddMemberIsIdempotent(t *testing.T) {
	svc := newGroupsService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, groupssvc.CreateParams{Name: "Book club", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, "u2"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	again, err := svc.AddMember(ctx, g.ID, "u2")
	if err != nil {
		t.Fatalf("AddMember repeat: %v", err)
	}
	if len(again.MemberIDs) != 1 {
		t.Fatalf("expected 1 member, got %d", len(again.MemberIDs))
	}
}

func TestAddMemberRejectsUnknownMember(t *testing.T) {
	svc := newGroupsService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, groupssvc.CreateParams{Name: "Book club", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, "ghost"); !errors.Is(err, domainmember.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	svc := newGroupsService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, groupssvc.CreateParams{Name: "Book club", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, "u2"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	after, err := svc.RemoveMember(ctx, g.ID, "u2")
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if after.HasMember("u2") {
		t.Fatalf("expected u2 removed")
	}
}

func TestDeleteGroup(t *testing.T) {
	svc := newGroupsService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, groupssvc.CreateParams{Name: "Book club", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, g.ID); !errors.Is(err, domaingroup.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
