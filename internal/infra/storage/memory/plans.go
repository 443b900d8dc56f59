package memory

import (
	"context"
	"sort"
	"sync"

	domainplan "memberhub/internal/domain/plan"
)

type PlanRepository struct {
	mu   sync.RWMutex
	byID map[domainplan.ID]*domainplan.Plan
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{byID: make(map[domainplan.ID]*domainplan.Plan)}
}

func (r *PlanRepository) Save(ctx context.Context, p *domainplan.Plan) error {
	if p == nil {
		return domainplan.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = clonePlan(p)
	return nil
}

func (r *PlanRepository) ByID(ctx context.Context, id domainplan.ID) (*domainplan.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byID[id]; ok {
		return clonePlan(p), nil
	}
	return nil, domainplan.ErrNotFound
}

func (r *PlanRepository) ByIDs(ctx context.Context, ids []domainplan.ID) ([]*domainplan.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainplan.Plan, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, clonePlan(p))
		}
	}
	return out, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*domainplan.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainplan.Plan, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, clonePlan(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceCents == out[j].PriceCents {
			return out[i].ID < out[j].ID
		}
		return out[i].PriceCents < out[j].PriceCents
	})
	return out, nil
}

func (r *PlanRepository) Delete(ctx context.Context, id domainplan.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domainplan.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func clonePlan(p *domainplan.Plan) *domainplan.Plan {
	if p == nil {
		return nil
	}
	copyPlan := *p
	copyPlan.Features = append([]string(nil), p.Features...)
	return &copyPlan
}

// SalesPageStore keeps the singleton sales page configuration.
type SalesPageStore struct {
	mu   sync.RWMutex
	page *domainplan.SalesPage
}

func NewSalesPageStore() *SalesPageStore {
	return &SalesPageStore{}
}

func (s *SalesPageStore) Get(ctx context.Context) (*domainplan.SalesPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.page == nil {
		return &domainplan.SalesPage{}, nil
	}
	copyPage := *s.page
	copyPage.FeaturedPlanIDs = append([]domainplan.ID(nil), s.page.FeaturedPlanIDs...)
	return &copyPage, nil
}

func (s *SalesPageStore) Save(ctx context.Context, page *domainplan.SalesPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyPage := *page
	copyPage.FeaturedPlanIDs = append([]domainplan.ID(nil), page.FeaturedPlanIDs...)
	s.page = &copyPage
	return nil
}

var _ domainplan.Repository = (*PlanRepository)(nil)
var _ domainplan.SalesPageStore = (*SalesPageStore)(nil)
