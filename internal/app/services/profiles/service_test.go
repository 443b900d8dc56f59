package profiles_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	profilessvc "memberhub/internal/app/services/profiles"
	domainauth "memberhub/internal/domain/auth"
	domainmember "memberhub/internal/domain/member"
	"memberhub/internal/infra/storage/memory"
)

type recordingUploader struct {
	keys []string
}

func (u *recordingUploader) Upload(_ context.Context, key string, _ io.Reader, _ string) (string, error) {
	u.keys = append(u.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type profilesFixture struct {
	svc      *profilessvc.Service
	members  *memory.MemberRepository
	sessions *memory.SessionStore
	uploader *recordingUploader
}

func newProfilesFixture(t *testing.T) *profilesFixture {
	t.Helper()
	f := &profilesFixture{
		members:  memory.NewMemberRepository(),
		sessions: memory.NewSessionStore(),
		uploader: &recordingUploader{},
	}
	f.svc = &profilessvc.Service{
		Members:  f.members,
		Sessions: f.sessions,
		Avatars:  f.uploader,
		Clock:    func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *profilesFixture) seedMember(t *testing.T, id, username string) {
	t.Helper()
	m, err := domainmember.New(domainmember.CreateParams{
		ID:           domainmember.ID(id),
		Email:        username + "@example.com",
		Username:     username,
		DisplayName:  strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: "hash",
		Roles:        []domainmember.Role{domainmember.RoleMember},
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
	if err := f.members.Save(context.Background(), m); err != nil {
		t.Fatalf("save member %s: %v", id, err)
	}
}

func TestGetOmitsPrivateFields(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")

	p, err := f.svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Username != "alice" || p.DisplayName != "Alice" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")

	bio := "  Gopher at large.  "
	username := "Alice.Liddell"
	p, err := f.svc.Update(context.Background(), "u1", domainmember.ProfileUpdate{
		Username: &username,
		Bio:      &bio,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Username != "alice.liddell" {
		t.Fatalf("username not normalized: %q", p.Username)
	}
	if p.Bio != "Gopher at large." {
		t.Fatalf("bio not trimmed: %q", p.Bio)
	}
}

func TestUpdateRejectsTakenUsername(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")

	username := "alice"
	_, err := f.svc.Update(context.Background(), "u2", domainmember.ProfileUpdate{Username: &username})
	if !errors.Is(err, domainmember.ErrUsernameAlreadyUsed) {
		t.Fatalf("expected ErrUsernameAlreadyUsed, got %v", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")

	p, err := f.svc.UploadAvatar(context.Background(), "u1", strings.NewReader("png bytes"), "image/png")
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if len(f.uploader.keys) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(f.uploader.keys))
	}
	if !strings.HasPrefix(f.uploader.keys[0], "avatars/u1/") || !strings.HasSuffix(f.uploader.keys[0], ".png") {
		t.Fatalf("unexpected object key %q", f.uploader.keys[0])
	}
	if !strings.HasPrefix(p.AvatarURL, "https://cdn.example.com/avatars/u1/") {
		t.Fatalf("avatar url not stored: %q", p.AvatarURL)
	}
}

func TestUploadAvatarRejectsUnknownType(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")

	_, err := f.svc.UploadAvatar(context.Background(), "u1", strings.NewReader("gif"), "image/gif")
	if !errors.Is(err, profilessvc.ErrUnsupportedAvatarType) {
		t.Fatalf("expected ErrUnsupportedAvatarType, got %v", err)
	}
}

func TestListMembersSearch(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	f.seedMember(t, "u3", "alicia")

	page, err := f.svc.ListMembers(context.Background(), domainmember.ListParams{Query: "ali"})
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if page.Total != 2 || len(page.Members) != 2 {
		t.Fatalf("expected 2 matches, got total=%d len=%d", page.Total, len(page.Members))
	}
}

func TestBlockRevokesSessions(t *testing.T) {
	f := newProfilesFixture(t)
	f.seedMember(t, "u1", "alice")
	ctx := context.Background()

	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:    "token-1",
		MemberID: "u1",
		Roles:    []domainmember.Role{domainmember.RoleMember},
		TTL:      time.Hour,
		Now:      time.Now(),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := f.sessions.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if err := f.svc.Block(ctx, "u1"); err != nil {
		t.Fatalf("Block: %v", err)
	}
	p, err := f.svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !p.Blocked {
		t.Fatalf("expected member blocked")
	}
	if _, err := f.sessions.Get(ctx, "token-1"); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expected sessions revoked, got %v", err)
	}

	if err := f.svc.Unblock(ctx, "u1"); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	p, _ = f.svc.Get(ctx, "u1")
	if p.Blocked {
		t.Fatalf("expected member unblocked")
	}
}
