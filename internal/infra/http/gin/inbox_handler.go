package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"memberhub/internal/app/dto"
	inboxsvc "memberhub/internal/app/services/inbox"
	domaininbox "memberhub/internal/domain/inbox"
	domainmember "memberhub/internal/domain/member"
)

type InboxHTTP interface {
	Start(c *gin.Context)
	ListConversations(c *gin.Context)
	ListMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	MarkRead(c *gin.Context)
	Delete(c *gin.Context)
}

type InboxHandler struct {
	Service *inboxsvc.Service
	Logger  *slog.Logger
}

type startConversationRequest struct {
	MemberID string `json:"member_id"`
}

// Start gets or creates the caller's thread with another member. Both sides
// starting at once land on the same conversation.
func (h InboxHandler) Start(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox unavailable"})
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.MemberID = strings.TrimSpace(req.MemberID)
	if req.MemberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id is required"})
		return
	}
	conversation, err := h.Service.Start(c.Request.Context(), p.ID, domainmember.ID(req.MemberID))
	if err != nil {
		h.respondInboxError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         string(conversation.ID),
		"other_id":   string(conversation.Other(p.ID)),
		"created_at": conversation.CreatedAt,
	})
}

func (h InboxHandler) ListConversations(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox unavailable"})
		return
	}
	summaries, err := h.Service.ListConversations(c.Request.Context(), p.ID)
	if err != nil {
		h.respondInboxError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewConversationList(summaries))
}

func (h InboxHandler) ListMessages(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox unavailable"})
		return
	}
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
		return
	}
	views, err := h.Service.Messages(c.Request.Context(), p.ID, domaininbox.ConversationID(conversationID))
	if err != nil {
		h.respondInboxError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageList(views))
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

// SendMessage posts to a conversation. An optional Idempotency-Key header
// makes retries return the original message instead of a duplicate.
func (h InboxHandler) SendMessage(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox unavailable"})
		return
	}
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	message, err := h.Service.Send(
		c.Request.Context(),
		p.ID,
		domaininbox.ConversationID(conversationID),
		req.Body,
		strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	)
	if err != nil {
		h.respondInboxError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMessageFromDomain(message))
}

// MarkRead advances the caller's read cursor to now.
func (h InboxHandler) MarkRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox unavailable"})
		return
	}
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
		return
	}
	readAt, err := h.Service.MarkRead(c.Request.Context(), p.ID, domaininbox.ConversationID(conversationID))
	if err != nil {
		h.respondInboxError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read_at": readAt})
}

func (h InboxHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox unavailable"})
		return
	}
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.ID, domaininbox.ConversationID(conversationID)); err != nil {
		h.respondInboxError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h InboxHandler) respondInboxError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaininbox.ErrConversationNotFound),
		errors.Is(err, domainmember.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domaininbox.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
	case errors.Is(err, domaininbox.ErrSelfConversation),
		errors.Is(err, domaininbox.ErrBodyRequired),
		errors.Is(err, domaininbox.ErrBodyTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("inbox operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ InboxHTTP = (*InboxHandler)(nil)
