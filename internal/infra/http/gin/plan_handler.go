package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	planssvc "memberhub/internal/app/services/plans"
	domainplan "memberhub/internal/domain/plan"
)

type PlanHTTP interface {
	SalesPage(c *gin.Context)
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UpdateSalesPage(c *gin.Context)
}

type PlanHandler struct {
	Service *planssvc.Service
	Logger  *slog.Logger
}

// SalesPage is public: the landing page does not require a session.
func (h PlanHandler) SalesPage(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plans unavailable"})
		return
	}
	view, err := h.Service.SalesPageView(c.Request.Context())
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSalesPage(view))
}

func (h PlanHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plans unavailable"})
		return
	}
	plans, err := h.Service.List(c.Request.Context(), p.HasRole("admin"))
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPlanList(plans))
}

type createPlanRequest struct {
	Name       string   `json:"name"`
	PriceCents int64    `json:"price_cents"`
	Currency   string   `json:"currency"`
	Interval   string   `json:"interval"`
	Features   []string `json:"features"`
}

func (h PlanHandler) Create(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plans unavailable"})
		return
	}
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p, err := h.Service.Create(c.Request.Context(), planssvc.CreateParams{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Interval:   req.Interval,
		Features:   req.Features,
	})
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPlan(p))
}

type updatePlanRequest struct {
	Name       *string  `json:"name"`
	PriceCents *int64   `json:"price_cents"`
	Currency   *string  `json:"currency"`
	Interval   *string  `json:"interval"`
	Features   []string `json:"features"`
	Active     *bool    `json:"active"`
}

func (h PlanHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plans unavailable"})
		return
	}
	planID := strings.TrimSpace(c.Param("id"))
	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	params := domainplan.UpdateParams{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Features:   req.Features,
		Active:     req.Active,
	}
	if req.Interval != nil {
		interval := domainplan.Interval(*req.Interval)
		params.Interval = &interval
	}
	p, err := h.Service.Update(c.Request.Context(), domainplan.ID(planID), params)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPlan(p))
}

func (h PlanHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plans unavailable"})
		return
	}
	planID := strings.TrimSpace(c.Param("id"))
	if err := h.Service.Delete(c.Request.Context(), domainplan.ID(planID)); err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type salesPageRequest struct {
	Headline        string   `json:"headline"`
	Subheadline     string   `json:"subheadline"`
	HeroImageURL    string   `json:"hero_image_url"`
	FeaturedPlanIDs []string `json:"featured_plan_ids"`
}

func (h PlanHandler) UpdateSalesPage(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plans unavailable"})
		return
	}
	var req salesPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	page, err := h.Service.UpdateSalesPage(c.Request.Context(), planssvc.SalesPageUpdate{
		Headline:        req.Headline,
		Subheadline:     req.Subheadline,
		HeroImageURL:    req.HeroImageURL,
		FeaturedPlanIDs: req.FeaturedPlanIDs,
	})
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated_at": page.UpdatedAt})
}

func (h PlanHandler) respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainplan.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
	case errors.Is(err, domainplan.ErrNameRequired),
		errors.Is(err, domainplan.ErrPriceNegative),
		errors.Is(err, domainplan.ErrCurrencyRequired),
		errors.Is(err, domainplan.ErrUnknownInterval):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("plan operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ PlanHTTP = (*PlanHandler)(nil)
