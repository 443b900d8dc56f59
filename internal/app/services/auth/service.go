package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "memberhub/internal/domain/auth"
	domainmember "memberhub/internal/domain/member"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrMemberBlocked      = errors.New("auth: member blocked")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

type Service struct {
	Members    domainmember.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email       string
	Username    string
	DisplayName string
	Password    string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	Member *domainmember.Member
	Token  string
}

type ResolveResult struct {
	Member  *domainmember.Member
	Session *domainauth.Session
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainmember.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainmember.ErrEmailRequired
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	m, err := domainmember.New(domainmember.CreateParams{
		ID:           domainmember.ID(uuid.NewString()),
		Email:        email,
		Username:     params.Username,
		DisplayName:  params.DisplayName,
		PasswordHash: hash,
		Roles:        []domainmember.Role{domainmember.RoleMember},
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Members.Save(ctx, m); err != nil {
		return nil, err
	}
	token, err := s.issueSession(ctx, m)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("member registered", "member_id", m.ID, "username", m.Username)
	}
	return &AuthResult{Member: m, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainmember.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	m, err := s.Members.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainmember.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if m.Blocked {
		return nil, ErrMemberBlocked
	}
	if err := s.Passwords.Compare(m.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueSession(ctx, m)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("member authenticated", "member_id", m.ID)
	}
	return &AuthResult{Member: m, Token: token}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, domainauth.Token(token)); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("session terminated")
	}
	return nil
}

func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	m, err := s.Members.ByID(ctx, session.MemberID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, session.Token)
		if errors.Is(err, domainmember.ErrNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	if m.Blocked {
		_ = s.Sessions.DeleteByMember(ctx, m.ID)
		return nil, ErrMemberBlocked
	}
	return &ResolveResult{Member: m, Session: session}, nil
}

func (s *Service) issueSession(ctx context.Context, m *domainmember.Member) (string, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:    domainauth.Token(token),
		MemberID: m.ID,
		Roles:    append([]domainmember.Role(nil), m.Roles...),
		TTL:      s.sessionTTL(),
		Now:      time.Now(),
	})
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Members == nil:
		return errors.New("auth: member repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}
