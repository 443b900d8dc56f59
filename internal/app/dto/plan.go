package dto

import (
	"time"

	planssvc "memberhub/internal/app/services/plans"
	domainplan "memberhub/internal/domain/plan"
)

type Plan struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	Interval   string    `json:"interval"`
	Features   []string  `json:"features"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewPlan(p *domainplan.Plan) Plan {
	return Plan{
		ID:         string(p.ID),
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Currency:   p.Currency,
		Interval:   string(p.Interval),
		Features:   append([]string(nil), p.Features...),
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type PlanList struct {
	Items []Plan `json:"items"`
}

func NewPlanList(plans []*domainplan.Plan) PlanList {
	list := PlanList{Items: make([]Plan, 0, len(plans))}
	for _, p := range plans {
		list.Items = append(list.Items, NewPlan(p))
	}
	return list
}

type SalesPage struct {
	Headline      string    `json:"headline"`
	Subheadline   string    `json:"subheadline,omitempty"`
	HeroImageURL  string    `json:"hero_image_url,omitempty"`
	FeaturedPlans []Plan    `json:"featured_plans"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewSalesPage(view *planssvc.SalesPageView) SalesPage {
	featured := make([]Plan, 0, len(view.FeaturedPlans))
	for _, p := range view.FeaturedPlans {
		featured = append(featured, NewPlan(p))
	}
	return SalesPage{
		Headline:      view.Headline,
		Subheadline:   view.Subheadline,
		HeroImageURL:  view.HeroImageURL,
		FeaturedPlans: featured,
		UpdatedAt:     view.UpdatedAt,
	}
}
