package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	updatessvc "memberhub/internal/app/services/updates"
	domainupdate "memberhub/internal/domain/update"
)

type UpdatesHTTP interface {
	List(c *gin.Context)
	MarkRead(c *gin.Context)
	MarkAllRead(c *gin.Context)
	Publish(c *gin.Context)
	Delete(c *gin.Context)
}

type UpdatesHandler struct {
	Service *updatessvc.Service
	Logger  *slog.Logger
}

func (h UpdatesHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "updates unavailable"})
		return
	}
	views, err := h.Service.List(c.Request.Context(), p.ID)
	if err != nil {
		h.respondUpdatesError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSiteUpdateList(views))
}

func (h UpdatesHandler) MarkRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "updates unavailable"})
		return
	}
	updateID := strings.TrimSpace(c.Param("id"))
	if updateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "update id is required"})
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), p.ID, domainupdate.ID(updateID)); err != nil {
		h.respondUpdatesError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h UpdatesHandler) MarkAllRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "updates unavailable"})
		return
	}
	if err := h.Service.MarkAllRead(c.Request.Context(), p.ID); err != nil {
		h.respondUpdatesError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type publishUpdateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h UpdatesHandler) Publish(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "updates unavailable"})
		return
	}
	var req publishUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	u, err := h.Service.Publish(c.Request.Context(), p.ID, req.Title, req.Body)
	if err != nil {
		h.respondUpdatesError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSiteUpdateFromDomain(u))
}

func (h UpdatesHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "updates unavailable"})
		return
	}
	updateID := strings.TrimSpace(c.Param("id"))
	if updateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "update id is required"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainupdate.ID(updateID)); err != nil {
		h.respondUpdatesError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h UpdatesHandler) respondUpdatesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainupdate.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "update not found"})
	case errors.Is(err, domainupdate.ErrTitleRequired),
		errors.Is(err, domainupdate.ErrBodyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("updates operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ UpdatesHTTP = (*UpdatesHandler)(nil)
