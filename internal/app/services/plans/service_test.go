package plans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	planssvc "memberhub/internal/app/services/plans"
	domainplan "memberhub/internal/domain/plan"
	"memberhub/internal/infra/storage/memory"
)

func newPlansService(t *testing.T) *planssvc.Service {
	t.Helper()
	return &planssvc.Service{
		Plans:     memory.NewPlanRepository(),
		SalesPage: memory.NewSalesPageStore(),
		Clock:     func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func createPlan(t *testing.T, svc *planssvc.Service, name string, priceCents int64) *domainplan.Plan {
	t.Helper()
	p, err := svc.Create(context.Background(), planssvc.CreateParams{
		Name:       name,
		PriceCents: priceCents,
		Currency:   "usd",
		Interval:   "month",
		Features:   []string{"Community access"},
	})
	if err != nil {
		t.Fatalf("create plan %s: %v", name, err)
	}
	return p
}

func TestCreateRejectsUnknownInterval(t *testing.T) {
	svc := newPlansService(t)

	_, err := svc.Create(context.Background(), planssvc.CreateParams{
		Name:       "Gold",
		PriceCents: 1900,
		Currency:   "usd",
		Interval:   "weekly",
	})
	if !errors.Is(err, domainplan.ErrUnknownInterval) {
		t.Fatalf("expected ErrUnknownInterval, got %v", err)
	}
}

func TestListFiltersInactiveForMembers(t *testing.T) {
	svc := newPlansService(t)
	ctx := context.Background()

	basic := createPlan(t, svc, "Basic", 900)
	createPlan(t, svc, "Gold", 1900)

	active := false
	if _, err := svc.Update(ctx, basic.ID, domainplan.UpdateParams{Active: &active}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	visible, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 1 || visible[0].Name != "Gold" {
		t.Fatalf("expected only the active plan, got %+v", visible)
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both plans for admins, got %d", len(all))
	}
}

func TestUpdateSalesPageValidatesFeaturedPlans(t *testing.T) {
	svc := newPlansService(t)

	_, err := svc.UpdateSalesPage(context.Background(), planssvc.SalesPageUpdate{
		Headline:        "Join us",
		FeaturedPlanIDs: []string{"ghost"},
	})
	if !errors.Is(err, domainplan.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSalesPageViewFiltersInactivePlans(t *testing.T) {
	svc := newPlansService(t)
	ctx := context.Background()

	basic := createPlan(t, svc, "Basic", 900)
	gold := createPlan(t, svc, "Gold", 1900)

	_, err := svc.UpdateSalesPage(ctx, planssvc.SalesPageUpdate{
		Headline:        "Join us",
		Subheadline:     "Learn together.",
		FeaturedPlanIDs: []string{string(basic.ID), string(gold.ID)},
	})
	if err != nil {
		t.Fatalf("UpdateSalesPage: %v", err)
	}

	active := false
	if _, err := svc.Update(ctx, basic.ID, domainplan.UpdateParams{Active: &active}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	view, err := svc.SalesPageView(ctx)
	if err != nil {
		t.Fatalf("SalesPageView: %v", err)
	}
	if view.Headline != "Join us" {
		t.Fatalf("expected headline, got %q", view.Headline)
	}
	if len(view.FeaturedPlans) != 1 || view.FeaturedPlans[0].ID != gold.ID {
		t.Fatalf("expected only the active featured plan, got %+v", view.FeaturedPlans)
	}
}

func TestDeletePrunesFeaturedPlan(t *testing.T) {
	svc := newPlansService(t)
	ctx := context.Background()

	basic := createPlan(t, svc, "Basic", 900)
	gold := createPlan(t, svc, "Gold", 1900)

	_, err := svc.UpdateSalesPage(ctx, planssvc.SalesPageUpdate{
		Headline:        "Join us",
		FeaturedPlanIDs: []string{string(basic.ID), string(gold.ID)},
	})
	if err != nil {
		t.Fatalf("UpdateSalesPage: %v", err)
	}

	if err := svc.Delete(ctx, basic.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	stored, err := svc.SalesPage.Get(ctx)
	if err != nil {
		t.Fatalf("Get sales page: %v", err)
	}
	if len(stored.FeaturedPlanIDs) != 1 || stored.FeaturedPlanIDs[0] != gold.ID {
		t.Fatalf("expected deleted plan removed from stored page, got %v", stored.FeaturedPlanIDs)
	}
}

func TestSalesPageViewEmptyByDefault(t *testing.T) {
	svc := newPlansService(t)

	view, err := svc.SalesPageView(context.Background())
	if err != nil {
		t.Fatalf("SalesPageView: %v", err)
	}
	if view.Headline != "" || len(view.FeaturedPlans) != 0 {
		t.Fatalf("expected empty page, got %+v", view)
	}
}
