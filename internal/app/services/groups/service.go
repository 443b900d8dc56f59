package groups

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domaingroup "memberhub/internal/domain/group"
	domainmember "memberhub/internal/domain/member"
)

// Service manages member groups: admin CRUD plus self-service join/leave.
type Service struct {
	Groups  domaingroup.Repository
	Members domainmember.Repository
	Logger  *slog.Logger
	Clock   func() time.Time
}

type CreateParams struct {
	Name        string
	Description string
	OwnerID     domainmember.ID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domaingroup.Group, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	g, err := domaingroup.New(domaingroup.CreateParams{
		ID:          domaingroup.ID(uuid.NewString()),
		Name:        params.Name,
		Description: params.Description,
		OwnerID:     params.OwnerID,
		Now:         s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Groups.Save(ctx, g); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("group created", "group_id", g.ID, "name", g.Name)
	}
	return g, nil
}

func (s *Service) Update(ctx context.Context, id domaingroup.ID, name, description string) (*domaingroup.Group, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	g, err := s.Groups.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.Rename(name, description, s.now()); err != nil {
		return nil, err
	}
	if err := s.Groups.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, id domaingroup.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	return s.Groups.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domaingroup.Group, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Groups.List(ctx)
}

func (s *Service) Get(ctx context.Context, id domaingroup.ID) (*domaingroup.Group, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Groups.ByID(ctx, id)
}

// AddMember puts a member into a group; adding twice is a no-op.
func (s *Service) AddMember(ctx context.Context, groupID domaingroup.ID, memberID domainmember.ID) (*domaingroup.Group, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if _, err := s.Members.ByID(ctx, memberID); err != nil {
		return nil, err
	}
	g, err := s.Groups.ByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	g.AddMember(memberID, s.now())
	if err := s.Groups.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) RemoveMember(ctx context.Context, groupID domaingroup.ID, memberID domainmember.ID) (*domaingroup.Group, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	g, err := s.Groups.ByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	g.RemoveMember(memberID, s.now())
	if err := s.Groups.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Groups == nil:
		return errors.New("groups: group repository required")
	case s.Members == nil:
		return errors.New("groups: member repository required")
	default:
		return nil
	}
}
