package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	groupssvc "memberhub/internal/app/services/groups"
	domaingroup "memberhub/internal/domain/group"
	domainmember "memberhub/internal/domain/member"
)

type GroupHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Join(c *gin.Context)
	Leave(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	AddMember(c *gin.Context)
	RemoveMember(c *gin.Context)
}

type GroupHandler struct {
	Service *groupssvc.Service
	Logger  *slog.Logger
}

func (h GroupHandler) List(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groups, err := h.Service.List(c.Request.Context())
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupList(groups))
}

func (h GroupHandler) Get(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group id is required"})
		return
	}
	g, err := h.Service.Get(c.Request.Context(), domaingroup.ID(groupID))
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroup(g))
}

// Join adds the caller to the group; joining twice is a no-op.
func (h GroupHandler) Join(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	g, err := h.Service.AddMember(c.Request.Context(), domaingroup.ID(groupID), p.ID)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroup(g))
}

func (h GroupHandler) Leave(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	g, err := h.Service.RemoveMember(c.Request.Context(), domaingroup.ID(groupID), p.ID)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroup(g))
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h GroupHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	g, err := h.Service.Create(c.Request.Context(), groupssvc.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     p.ID,
	})
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewGroup(g))
}

func (h GroupHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	g, err := h.Service.Update(c.Request.Context(), domaingroup.ID(groupID), req.Name, req.Description)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroup(g))
}

func (h GroupHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	if err := h.Service.Delete(c.Request.Context(), domaingroup.ID(groupID)); err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addGroupMemberRequest struct {
	MemberID string `json:"member_id"`
}

// AddMember lets admins enroll any member into a group.
func (h GroupHandler) AddMember(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	var req addGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.MemberID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id is required"})
		return
	}
	g, err := h.Service.AddMember(c.Request.Context(), domaingroup.ID(groupID), domainmember.ID(strings.TrimSpace(req.MemberID)))
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroup(g))
}

// RemoveMember lets admins remove any member from a group.
func (h GroupHandler) RemoveMember(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "groups unavailable"})
		return
	}
	groupID := strings.TrimSpace(c.Param("id"))
	memberID := strings.TrimSpace(c.Param("member_id"))
	if memberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member id is required"})
		return
	}
	g, err := h.Service.RemoveMember(c.Request.Context(), domaingroup.ID(groupID), domainmember.ID(memberID))
	if err != nil {
		h.respondGroupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroup(g))
}

func (h GroupHandler) respondGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaingroup.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
	case errors.Is(err, domainmember.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	case errors.Is(err, domaingroup.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("group operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ GroupHTTP = (*GroupHandler)(nil)
