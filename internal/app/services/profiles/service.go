package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "memberhub/internal/domain/auth"
	domainmember "memberhub/internal/domain/member"
	"memberhub/internal/infra/storage/s3"
)

var ErrUnsupportedAvatarType = errors.New("profiles: unsupported avatar content type")

// Service covers member profiles and the admin member directory.
type Service struct {
	Members  domainmember.Repository
	Sessions domainauth.SessionStore
	Avatars  s3.Uploader
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Profile is the public shape of a member, password hash and email withheld.
type Profile struct {
	ID          domainmember.ID
	Username    string
	DisplayName string
	Bio         string
	AvatarURL   string
	Blocked     bool
	CreatedAt   time.Time
}

func (s *Service) Get(ctx context.Context, id domainmember.ID) (*Profile, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	m, err := s.Members.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProfile(m), nil
}

func (s *Service) Update(ctx context.Context, id domainmember.ID, update domainmember.ProfileUpdate) (*Profile, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	m, err := s.Members.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.ApplyProfileUpdate(update, s.now()); err != nil {
		return nil, err
	}
	if err := s.Members.Save(ctx, m); err != nil {
		return nil, err
	}
	return toProfile(m), nil
}

// UploadAvatar stores the image and points the profile at its public URL.
func (s *Service) UploadAvatar(ctx context.Context, id domainmember.ID, content io.Reader, contentType string) (*Profile, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if s.Avatars == nil {
		return nil, errors.New("profiles: avatar uploader required")
	}
	ext, ok := avatarExtension(contentType)
	if !ok {
		return nil, ErrUnsupportedAvatarType
	}
	m, err := s.Members.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key := path.Join("avatars", string(m.ID), uuid.NewString()+ext)
	url, err := s.Avatars.Upload(ctx, key, content, contentType)
	if err != nil {
		return nil, fmt.Errorf("profiles: upload avatar: %w", err)
	}
	m.SetAvatarURL(url, s.now())
	if err := s.Members.Save(ctx, m); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("avatar updated", "member_id", m.ID, "url", url)
	}
	return toProfile(m), nil
}

type DirectoryPage struct {
	Members []*Profile
	Total   int
}

// ListMembers is the admin directory with optional substring search.
func (s *Service) ListMembers(ctx context.Context, params domainmember.ListParams) (*DirectoryPage, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	members, total, err := s.Members.List(ctx, params)
	if err != nil {
		return nil, err
	}
	profiles := make([]*Profile, 0, len(members))
	for _, m := range members {
		profiles = append(profiles, toProfile(m))
	}
	return &DirectoryPage{Members: profiles, Total: total}, nil
}

// Block locks the account out and revokes every active session.
func (s *Service) Block(ctx context.Context, id domainmember.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	m, err := s.Members.ByID(ctx, id)
	if err != nil {
		return err
	}
	m.SetBlocked(true, s.now())
	if err := s.Members.Save(ctx, m); err != nil {
		return err
	}
	if err := s.Sessions.DeleteByMember(ctx, id); err != nil {
		return fmt.Errorf("profiles: revoke sessions: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("member blocked", "member_id", id)
	}
	return nil
}

func (s *Service) Unblock(ctx context.Context, id domainmember.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	m, err := s.Members.ByID(ctx, id)
	if err != nil {
		return err
	}
	m.SetBlocked(false, s.now())
	return s.Members.Save(ctx, m)
}

func toProfile(m *domainmember.Member) *Profile {
	return &Profile{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Bio:         m.Bio,
		AvatarURL:   m.AvatarURL,
		Blocked:     m.Blocked,
		CreatedAt:   m.CreatedAt,
	}
}

func avatarExtension(contentType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png", true
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Members == nil:
		return errors.New("profiles: member repository required")
	case s.Sessions == nil:
		return errors.New("profiles: session store required")
	default:
		return nil
	}
}
