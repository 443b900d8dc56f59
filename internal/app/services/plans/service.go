package plans

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainplan "memberhub/internal/domain/plan"
)

// Service manages membership plans and the public sales page.
type Service struct {
	Plans     domainplan.Repository
	SalesPage domainplan.SalesPageStore
	Logger    *slog.Logger
	Clock     func() time.Time
}

type CreateParams struct {
	Name       string
	PriceCents int64
	Currency   string
	Interval   string
	Features   []string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainplan.Plan, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	p, err := domainplan.New(domainplan.CreateParams{
		ID:         domainplan.ID(uuid.NewString()),
		Name:       params.Name,
		PriceCents: params.PriceCents,
		Currency:   params.Currency,
		Interval:   domainplan.Interval(params.Interval),
		Features:   params.Features,
		Now:        s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Plans.Save(ctx, p); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("plan created", "plan_id", p.ID, "name", p.Name)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id domainplan.ID, params domainplan.UpdateParams) (*domainplan.Plan, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	p, err := s.Plans.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(params, s.now()); err != nil {
		return nil, err
	}
	if err := s.Plans.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the plan and unfeatures it from the stored sales page.
func (s *Service) Delete(ctx context.Context, id domainplan.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if err := s.Plans.Delete(ctx, id); err != nil {
		return err
	}
	return s.unfeature(ctx, id)
}

func (s *Service) unfeature(ctx context.Context, id domainplan.ID) error {
	page, err := s.SalesPage.Get(ctx)
	if err != nil {
		return err
	}
	kept := page.FeaturedPlanIDs[:0]
	for _, featured := range page.FeaturedPlanIDs {
		if featured != id {
			kept = append(kept, featured)
		}
	}
	if len(kept) == len(page.FeaturedPlanIDs) {
		return nil
	}
	page.FeaturedPlanIDs = kept
	page.UpdatedAt = s.now().UTC()
	return s.SalesPage.Save(ctx, page)
}

// List returns every plan for admins, or only active plans otherwise.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*domainplan.Plan, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	all, err := s.Plans.List(ctx)
	if err != nil {
		return nil, err
	}
	if includeInactive {
		return all, nil
	}
	active := make([]*domainplan.Plan, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

type SalesPageUpdate struct {
	Headline        string
	Subheadline     string
	HeroImageURL    string
	FeaturedPlanIDs []string
}

// SalesPageView is the public landing page with its featured plans
// resolved, inactive and unknown plans filtered out.
type SalesPageView struct {
	Headline      string
	Subheadline   string
	HeroImageURL  string
	FeaturedPlans []*domainplan.Plan
	UpdatedAt     time.Time
}

func (s *Service) UpdateSalesPage(ctx context.Context, update SalesPageUpdate) (*domainplan.SalesPage, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	featured := make([]domainplan.ID, 0, len(update.FeaturedPlanIDs))
	for _, raw := range update.FeaturedPlanIDs {
		id := domainplan.ID(raw)
		if _, err := s.Plans.ByID(ctx, id); err != nil {
			return nil, err
		}
		featured = append(featured, id)
	}
	page := &domainplan.SalesPage{
		Headline:        update.Headline,
		Subheadline:     update.Subheadline,
		HeroImageURL:    update.HeroImageURL,
		FeaturedPlanIDs: featured,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.SalesPage.Save(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Service) SalesPageView(ctx context.Context) (*SalesPageView, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	page, err := s.SalesPage.Get(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.Plans.ByIDs(ctx, page.FeaturedPlanIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[domainplan.ID]*domainplan.Plan, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
	}
	featured := make([]*domainplan.Plan, 0, len(page.FeaturedPlanIDs))
	for _, id := range page.FeaturedPlanIDs {
		p, ok := byID[id]
		if !ok || !p.Active {
			continue
		}
		featured = append(featured, p)
	}
	return &SalesPageView{
		Headline:      page.Headline,
		Subheadline:   page.Subheadline,
		HeroImageURL:  page.HeroImageURL,
		FeaturedPlans: featured,
		UpdatedAt:     page.UpdatedAt,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Plans == nil:
		return errors.New("plans: plan repository required")
	case s.SalesPage == nil:
		return errors.New("plans: sales page store required")
	default:
		return nil
	}
}
