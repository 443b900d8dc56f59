package memory

import (
	"context"
	"sort"
	"sync"

	domaingroup "memberhub/internal/domain/group"
	domainmember "memberhub/internal/domain/member"
)

type GroupRepository struct {
	mu   sync.RWMutex
	byID map[domaingroup.ID]*domaingroup.Group
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{byID: make(map[domaingroup.ID]*domaingroup.Group)}
}

func (r *GroupRepository) Save(ctx context.Context, g *domaingroup.Group) error {
	if g == nil {
		return domaingroup.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[g.ID] = cloneGroup(g)
	return nil
}

func (r *GroupRepository) ByID(ctx context.Context, id domaingroup.ID) (*domaingroup.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.byID[id]; ok {
		return cloneGroup(g), nil
	}
	return nil, domaingroup.ErrNotFound
}

func (r *GroupRepository) List(ctx context.Context) ([]*domaingroup.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaingroup.Group, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id domaingroup.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domaingroup.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneGroup(g *domaingroup.Group) *domaingroup.Group {
	if g == nil {
		return nil
	}
	copyGroup := *g
	copyGroup.MemberIDs = append([]domainmember.ID(nil), g.MemberIDs...)
	return &copyGroup
}

var _ domaingroup.Repository = (*GroupRepository)(nil)
