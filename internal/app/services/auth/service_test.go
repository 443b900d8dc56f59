package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	authsvc "memberhub/internal/app/services/auth"
	domainauth "memberhub/internal/domain/auth"
	domainmember "memberhub/internal/domain/member"
	"memberhub/internal/infra/storage/memory"
)

// plainHasher keeps passwords readable so assertions stay about the
// service, not the hash function.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type sequenceTokens struct {
	n int
}

func (g *sequenceTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

type authFixture struct {
	svc      *authsvc.Service
	members  *memory.MemberRepository
	sessions *memory.SessionStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		members:  memory.NewMemberRepository(),
		sessions: memory.NewSessionStore(),
	}
	f.svc = &authsvc.Service{
		Members:    f.members,
		Sessions:   f.sessions,
		Passwords:  plainHasher{},
		Tokens:     &sequenceTokens{},
		SessionTTL: time.Hour,
	}
	return f
}

func (f *authFixture) register(t *testing.T, email, username, password string) *authsvc.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), authsvc.RegisterParams{
		Email:       email,
		Username:    username,
		DisplayName: username,
		Password:    password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res
}

func TestRegisterIssuesSession(t *testing.T) {
	f := newAuthFixture(t)

	res := f.register(t, "Alice@Example.com", "alice", "correct horse")
	if res.Token == "" {
		t.Fatalf("expected a session token")
	}
	if res.Member.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", res.Member.Email)
	}
	if !res.Member.HasRole(domainmember.RoleMember) {
		t.Fatalf("expected member role, got %v", res.Member.Roles)
	}
	resolved, err := f.svc.ResolveToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if resolved.Member.ID != res.Member.ID {
		t.Fatalf("resolved wrong member: %q", resolved.Member.ID)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), authsvc.RegisterParams{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "short",
	})
	if !errors.Is(err, authsvc.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "alice", "correct horse")

	_, err := f.svc.Register(context.Background(), authsvc.RegisterParams{
		Email:       "alice@example.com",
		Username:    "alice2",
		DisplayName: "Alice",
		Password:    "correct horse",
	})
	if !errors.Is(err, domainmember.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "alice", "correct horse")

	_, err := f.svc.Register(context.Background(), authsvc.RegisterParams{
		Email:       "other@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "correct horse",
	})
	if !errors.Is(err, domainmember.ErrUsernameAlreadyUsed) {
		t.Fatalf("expected ErrUsernameAlreadyUsed, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "alice", "correct horse")

	res, err := f.svc.Login(context.Background(), authsvc.LoginParams{
		Email:    "ALICE@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected a session token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice@example.com", "alice", "correct horse")

	_, err := f.svc.Login(context.Background(), authsvc.LoginParams{
		Email:    "alice@example.com",
		Password: "wrong horse",
	})
	if !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), authsvc.LoginParams{
		Email:    "ghost@example.com",
		Password: "correct horse",
	})
	if !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginBlockedMember(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "alice", "correct horse")
	ctx := context.Background()

	m, err := f.members.ByID(ctx, res.Member.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	m.SetBlocked(true, time.Now())
	if err := f.members.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err = f.svc.Login(ctx, authsvc.LoginParams{Email: "alice@example.com", Password: "correct horse"})
	if !errors.Is(err, authsvc.ErrMemberBlocked) {
		t.Fatalf("expected ErrMemberBlocked, got %v", err)
	}
}

func TestResolveTokenBlockedMemberDropsSessions(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "alice", "correct horse")
	ctx := context.Background()

	m, _ := f.members.ByID(ctx, res.Member.ID)
	m.SetBlocked(true, time.Now())
	if err := f.members.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := f.svc.ResolveToken(ctx, res.Token); !errors.Is(err, authsvc.ErrMemberBlocked) {
		t.Fatalf("expected ErrMemberBlocked, got %v", err)
	}
	// The session itself is gone now.
	if _, err := f.sessions.Get(ctx, domainauth.Token(res.Token)); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newAuthFixture(t)
	res := f.register(t, "alice@example.com", "alice", "correct horse")
	ctx := context.Background()

	if err := f.svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.ResolveToken(ctx, res.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestResolveTokenEmpty(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.svc.ResolveToken(context.Background(), "  "); !errors.Is(err, domainauth.ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
}
