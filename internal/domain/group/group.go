package group

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain/member"
)

var (
	ErrIDRequired    = errors.New("group: id is required")
	ErrNameRequired  = errors.New("group: name is required")
	ErrOwnerRequired = errors.New("group: owner is required")
	ErrNotFound      = errors.New("group: not found")
)

type ID string

type Group struct {
	ID          ID
	Name        string
	Description string
	OwnerID     member.ID
	MemberIDs   []member.ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	ID          ID
	Name        string
	Description string
	OwnerID     member.ID
	Now         time.Time
}

func New(params CreateParams) (*Group, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	owner := member.ID(strings.TrimSpace(string(params.OwnerID)))
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Group{
		ID:          ID(id),
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		OwnerID:     owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *Group) Rename(name, description string, now time.Time) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	g.Name = trimmed
	g.Description = strings.TrimSpace(description)
	g.touch(now)
	return nil
}

// AddMember is a no-op when the member already belongs to the group.
func (g *Group) AddMember(id member.ID, now time.Time) {
	if g.HasMember(id) {
		return
	}
	g.MemberIDs = append(g.MemberIDs, id)
	g.touch(now)
}

func (g *Group) RemoveMember(id member.ID, now time.Time) {
	for i, current := range g.MemberIDs {
		if current == id {
			g.MemberIDs = append(g.MemberIDs[:i], g.MemberIDs[i+1:]...)
			g.touch(now)
			return
		}
	}
}

func (g *Group) HasMember(id member.ID) bool {
	for _, current := range g.MemberIDs {
		if current == id {
			return true
		}
	}
	return false
}

func (g *Group) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	g.UpdatedAt = now.UTC()
}

type Repository interface {
	Save(ctx context.Context, g *Group) error
	ByID(ctx context.Context, id ID) (*Group, error)
	List(ctx context.Context) ([]*Group, error)
	Delete(ctx context.Context, id ID) error
}
