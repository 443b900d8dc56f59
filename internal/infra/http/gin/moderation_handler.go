package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	moderationsvc "memberhub/internal/app/services/moderation"
	domaincomment "memberhub/internal/domain/comment"
)

type ModerationHTTP interface {
	Submit(c *gin.Context)
	Queue(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Delete(c *gin.Context)
}

type ModerationHandler struct {
	Service *moderationsvc.Service
	Logger  *slog.Logger
}

type submitCommentRequest struct {
	Body         string `json:"body"`
	Context      string `json:"context"`
	ContextRefID string `json:"context_ref_id"`
}

// Submit accepts a member comment; it enters the queue as pending.
func (h ModerationHandler) Submit(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "moderation unavailable"})
		return
	}
	var req submitCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	comment, err := h.Service.Submit(c.Request.Context(), moderationsvc.SubmitParams{
		AuthorID:     p.ID,
		Body:         req.Body,
		Context:      req.Context,
		ContextRefID: req.ContextRefID,
	})
	if err != nil {
		h.respondModerationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCommentFromDomain(comment))
}

// Queue is the admin moderation queue with status and context filters.
func (h ModerationHandler) Queue(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "moderation unavailable"})
		return
	}
	views, total, err := h.Service.List(c.Request.Context(), moderationsvc.ListParams{
		Status:  strings.TrimSpace(c.Query("status")),
		Context: strings.TrimSpace(c.Query("context")),
		Limit:   parsePositiveIntStrict(c.Query("limit"), 50),
		Offset:  parseNonNegativeInt(c.Query("offset"), 0),
	})
	if err != nil {
		h.respondModerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCommentList(views, total))
}

func (h ModerationHandler) Approve(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "moderation unavailable"})
		return
	}
	commentID := strings.TrimSpace(c.Param("id"))
	if commentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment id is required"})
		return
	}
	comment, err := h.Service.Approve(c.Request.Context(), domaincomment.ID(commentID))
	if err != nil {
		h.respondModerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCommentFromDomain(comment))
}

type rejectCommentRequest struct {
	Note string `json:"note"`
}

func (h ModerationHandler) Reject(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "moderation unavailable"})
		return
	}
	commentID := strings.TrimSpace(c.Param("id"))
	if commentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment id is required"})
		return
	}
	var req rejectCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	comment, err := h.Service.Reject(c.Request.Context(), domaincomment.ID(commentID), req.Note)
	if err != nil {
		h.respondModerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCommentFromDomain(comment))
}

func (h ModerationHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "moderation unavailable"})
		return
	}
	commentID := strings.TrimSpace(c.Param("id"))
	if commentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment id is required"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domaincomment.ID(commentID)); err != nil {
		h.respondModerationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ModerationHandler) respondModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincomment.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
	case errors.Is(err, domaincomment.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaincomment.ErrBodyRequired),
		errors.Is(err, domaincomment.ErrBodyTooLong),
		errors.Is(err, domaincomment.ErrContextRequired),
		errors.Is(err, domaincomment.ErrUnknownContext),
		errors.Is(err, domaincomment.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("moderation operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ModerationHTTP = (*ModerationHandler)(nil)
