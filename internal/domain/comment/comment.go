package comment

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain/member"
	"memberhub/internal/domain/shared/events"
)

var (
	ErrIDRequired      = errors.New("comment: id is required")
	ErrAuthorRequired  = errors.New("comment: author is required")
	ErrBodyRequired    = errors.New("comment: body is required")
	ErrBodyTooLong     = errors.New("comment: body exceeds 2000 characters")
	ErrContextRequired = errors.New("comment: context ref is required")
	ErrUnknownContext  = errors.New("comment: unknown context")
	ErrUnknownStatus   = errors.New("comment: unknown status")
	ErrNotPending      = errors.New("comment: decision already made")
	ErrNotFound        = errors.New("comment: not found")
)

const maxBodyLength = 2000

type ID string

// Context identifies the surface a comment was posted on. Parsing is strict:
// unknown strings are rejected instead of falling back to a default.
type Context string

const (
	ContextMemberFeed Context = "member_feed"
	ContextGroup      Context = "group"
	ContextTool       Context = "tool"
	ContextCourse     Context = "course"
)

func ParseContext(raw string) (Context, error) {
	switch Context(strings.ToLower(strings.TrimSpace(raw))) {
	case ContextMemberFeed:
		return ContextMemberFeed, nil
	case ContextGroup:
		return ContextGroup, nil
	case ContextTool:
		return ContextTool, nil
	case ContextCourse:
		return ContextCourse, nil
	default:
		return "", ErrUnknownContext
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", ErrUnknownStatus
	}
}

type Comment struct {
	ID            ID
	AuthorID      member.ID
	Body          string
	Context       Context
	ContextRefID  string
	Status        Status
	ModeratorNote string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SubmitParams struct {
	ID           ID
	AuthorID     member.ID
	Body         string
	Context      Context
	ContextRefID string
	Now          time.Time
}

func Submit(params SubmitParams) (*Comment, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	author := member.ID(strings.TrimSpace(string(params.AuthorID)))
	if author == "" {
		return nil, ErrAuthorRequired
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrBodyRequired
	}
	if len([]rune(body)) > maxBodyLength {
		return nil, ErrBodyTooLong
	}
	if _, err := ParseContext(string(params.Context)); err != nil {
		return nil, err
	}
	refID := strings.TrimSpace(params.ContextRefID)
	if refID == "" {
		return nil, ErrContextRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Comment{
		ID:           ID(id),
		AuthorID:     author,
		Body:         body,
		Context:      params.Context,
		ContextRefID: refID,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Approve moves a pending or previously rejected comment into the approved
// state. Re-approving an approved comment is a no-op.
func (c *Comment) Approve(now time.Time) {
	if c.Status == StatusApproved {
		return
	}
	c.Status = StatusApproved
	c.ModeratorNote = ""
	c.touch(now)
}

func (c *Comment) Reject(note string, now time.Time) {
	c.Status = StatusRejected
	c.ModeratorNote = strings.TrimSpace(note)
	c.touch(now)
}

func (c *Comment) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	c.UpdatedAt = now.UTC()
}

type ListParams struct {
	Status  Status
	Context Context
	Limit   int
	Offset  int
}

type Repository interface {
	Save(ctx context.Context, c *Comment) error
	ByID(ctx context.Context, id ID) (*Comment, error)
	// List returns comments newest first, filtered by status/context when set.
	List(ctx context.Context, params ListParams) ([]*Comment, int, error)
	Delete(ctx context.Context, id ID) error
}

const SubmittedEventName = "comments.submitted"

type SubmittedEvent struct {
	events.Base
	CommentID string `json:"comment_id"`
	AuthorID  string `json:"author_id"`
	Context   string `json:"context"`
	RefID     string `json:"ref_id"`
}

func NewSubmittedEvent(c *Comment) SubmittedEvent {
	return SubmittedEvent{
		Base:      events.New(SubmittedEventName, string(c.ID), c.CreatedAt),
		CommentID: string(c.ID),
		AuthorID:  string(c.AuthorID),
		Context:   string(c.Context),
		RefID:     c.ContextRefID,
	}
}
