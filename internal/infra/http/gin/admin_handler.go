package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	profilessvc "memberhub/internal/app/services/profiles"
	domainmember "memberhub/internal/domain/member"
)

type AdminHTTP interface {
	ListMembers(c *gin.Context)
	BlockMember(c *gin.Context)
	UnblockMember(c *gin.Context)
}

// AdminHandler is the member directory and account controls.
type AdminHandler struct {
	Service *profilessvc.Service
	Logger  *slog.Logger
}

func (h AdminHandler) ListMembers(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin unavailable"})
		return
	}
	page, err := h.Service.ListMembers(c.Request.Context(), domainmember.ListParams{
		Query:  strings.TrimSpace(c.Query("q")),
		Limit:  parsePositiveIntStrict(c.Query("limit"), 50),
		Offset: parseNonNegativeInt(c.Query("offset"), 0),
	})
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDirectoryPage(page))
}

// BlockMember locks the account and revokes its sessions immediately.
func (h AdminHandler) BlockMember(c *gin.Context) {
	p, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin unavailable"})
		return
	}
	memberID := strings.TrimSpace(c.Param("id"))
	if memberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member id is required"})
		return
	}
	if memberID == string(p.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot block yourself"})
		return
	}
	if err := h.Service.Block(c.Request.Context(), domainmember.ID(memberID)); err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AdminHandler) UnblockMember(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin unavailable"})
		return
	}
	memberID := strings.TrimSpace(c.Param("id"))
	if memberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member id is required"})
		return
	}
	if err := h.Service.Unblock(c.Request.Context(), domainmember.ID(memberID)); err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AdminHandler) respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainmember.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	default:
		if h.Logger != nil {
			h.Logger.Error("admin operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ AdminHTTP = (*AdminHandler)(nil)
