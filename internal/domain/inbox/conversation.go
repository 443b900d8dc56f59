package inbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain/member"
)

var (
	ErrIDRequired           = errors.New("inbox: conversation id is required")
	ErrParticipantsRequired = errors.New("inbox: both participants are required")
	ErrSelfConversation     = errors.New("inbox: cannot start a conversation with yourself")
	ErrNotParticipant       = errors.New("inbox: not a conversation participant")
	ErrConversationNotFound = errors.New("inbox: conversation not found")
)

type ConversationID string

// Conversation is a 1:1 thread between two members. The participant pair is
// stored canonically sorted so that (a,b) and (b,a) map to the same PairKey,
// which storage layers enforce as unique: exactly one conversation per pair.
type Conversation struct {
	ID             ConversationID
	ParticipantOne member.ID
	ParticipantTwo member.ID
	CreatedBy      member.ID
	CreatedAt      time.Time
	LastMessageAt  time.Time
	LastReadOne    time.Time
	LastReadTwo    time.Time

	// Preview of the latest message, denormalized so listing a mailbox
	// never needs a per-conversation message query.
	LastMessageText   string
	LastMessageSender member.ID
}

// PairKey returns the canonical identity of a participant pair.
func PairKey(a, b member.ID) string {
	first, second := SortParticipants(a, b)
	return string(first) + "|" + string(second)
}

func SortParticipants(a, b member.ID) (member.ID, member.ID) {
	if string(a) <= string(b) {
		return a, b
	}
	return b, a
}

type NewConversationParams struct {
	ID        ConversationID
	CreatedBy member.ID
	Other     member.ID
	Now       time.Time
}

func NewConversation(params NewConversationParams) (*Conversation, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	createdBy := member.ID(strings.TrimSpace(string(params.CreatedBy)))
	other := member.ID(strings.TrimSpace(string(params.Other)))
	if createdBy == "" || other == "" {
		return nil, ErrParticipantsRequired
	}
	if createdBy == other {
		return nil, ErrSelfConversation
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	one, two := SortParticipants(createdBy, other)
	return &Conversation{
		ID:             ConversationID(id),
		ParticipantOne: one,
		ParticipantTwo: two,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}, nil
}

func (c *Conversation) PairKey() string {
	return PairKey(c.ParticipantOne, c.ParticipantTwo)
}

func (c *Conversation) HasParticipant(id member.ID) bool {
	return id != "" && (c.ParticipantOne == id || c.ParticipantTwo == id)
}

// Other returns the participant opposite to the given one.
func (c *Conversation) Other(id member.ID) member.ID {
	if c.ParticipantOne == id {
		return c.ParticipantTwo
	}
	return c.ParticipantOne
}

// LastReadBy returns the read cursor for the given participant. Zero means
// the participant has never opened the conversation.
func (c *Conversation) LastReadBy(id member.ID) time.Time {
	if c.ParticipantOne == id {
		return c.LastReadOne
	}
	if c.ParticipantTwo == id {
		return c.LastReadTwo
	}
	return time.Time{}
}

// UnreadFor reports whether the conversation has activity the given
// participant has not caught up on: the viewer's cursor is unset or strictly
// before the last message. Equal timestamps count as read, and a conversation
// with no messages is always read.
func (c *Conversation) UnreadFor(id member.ID) bool {
	if c.LastMessageAt.IsZero() {
		return false
	}
	cursor := c.LastReadBy(id)
	if cursor.IsZero() {
		return true
	}
	return c.LastMessageAt.After(cursor)
}

type Repository interface {
	// GetOrCreate returns the conversation for the pair, inserting it
	// atomically when absent. The returned bool is true when a new
	// conversation was created.
	GetOrCreate(ctx context.Context, conversation *Conversation) (*Conversation, bool, error)
	ByID(ctx context.Context, id ConversationID) (*Conversation, error)
	ByParticipant(ctx context.Context, participant member.ID) ([]*Conversation, error)
	// Append stores a message and advances the conversation's
	// last_message_at, preview fields and the sender's read cursor in a
	// single atomic step.
	Append(ctx context.Context, msg *Message) error
	MarkRead(ctx context.Context, id ConversationID, reader member.ID, at time.Time) error
	// Delete removes the conversation together with all its messages.
	Delete(ctx context.Context, id ConversationID) error
}
