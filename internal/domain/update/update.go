package update

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain/member"
	"memberhub/internal/domain/shared/events"
)

var (
	ErrIDRequired     = errors.New("update: id is required")
	ErrAuthorRequired = errors.New("update: author is required")
	ErrTitleRequired  = errors.New("update: title is required")
	ErrBodyRequired   = errors.New("update: body is required")
	ErrNotFound       = errors.New("update: not found")
)

type ID string

// SiteUpdate is a one-to-many announcement visible to every member. Read
// state is tracked per reader through receipts rather than a shared cursor.
type SiteUpdate struct {
	ID          ID
	Title       string
	Body        string
	AuthorID    member.ID
	PublishedAt time.Time
}

type PublishParams struct {
	ID       ID
	Title    string
	Body     string
	AuthorID member.ID
	Now      time.Time
}

func Publish(params PublishParams) (*SiteUpdate, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	author := member.ID(strings.TrimSpace(string(params.AuthorID)))
	if author == "" {
		return nil, ErrAuthorRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrBodyRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &SiteUpdate{
		ID:          ID(id),
		Title:       title,
		Body:        body,
		AuthorID:    author,
		PublishedAt: now.UTC(),
	}, nil
}

// Receipt marks a single update as read by a single member.
type Receipt struct {
	UpdateID ID
	MemberID member.ID
	ReadAt   time.Time
}

type Repository interface {
	Save(ctx context.Context, u *SiteUpdate) error
	ByID(ctx context.Context, id ID) (*SiteUpdate, error)
	// List returns all updates, newest first.
	List(ctx context.Context) ([]*SiteUpdate, error)
	Delete(ctx context.Context, id ID) error
}

type ReceiptStore interface {
	// Add records a receipt; repeated calls for the same (update, member)
	// pair are a no-op.
	Add(ctx context.Context, receipt Receipt) error
	AddAll(ctx context.Context, receipts []Receipt) error
	// ReadSet returns the update ids the member has receipts for.
	ReadSet(ctx context.Context, memberID member.ID) (map[ID]struct{}, error)
	DeleteByUpdate(ctx context.Context, updateID ID) error
}

const PublishedEventName = "updates.published"

type PublishedEvent struct {
	events.Base
	UpdateID string `json:"update_id"`
	Title    string `json:"title"`
	AuthorID string `json:"author_id"`
}

func NewPublishedEvent(u *SiteUpdate) PublishedEvent {
	return PublishedEvent{
		Base:     events.New(PublishedEventName, string(u.ID), u.PublishedAt),
		UpdateID: string(u.ID),
		Title:    u.Title,
		AuthorID: string(u.AuthorID),
	}
}
