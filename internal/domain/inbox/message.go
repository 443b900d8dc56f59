package inbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain/member"
)

var (
	ErrMessageIDRequired = errors.New("inbox: message id is required")
	ErrSenderRequired    = errors.New("inbox: sender is required")
	ErrBodyRequired      = errors.New("inbox: message body is required")
	ErrBodyTooLong       = errors.New("inbox: message body exceeds 4000 characters")
)

// MaxBodyLength bounds a message body, counted in runes after trimming.
const MaxBodyLength = 4000

type MessageID string

// Message is an immutable entry in a conversation's stream.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       member.ID
	Body           string
	CreatedAt      time.Time
}

type NewMessageParams struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       member.ID
	Body           string
	Now            time.Time
}

func NewMessage(params NewMessageParams) (*Message, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrMessageIDRequired
	}
	if strings.TrimSpace(string(params.ConversationID)) == "" {
		return nil, ErrIDRequired
	}
	sender := member.ID(strings.TrimSpace(string(params.SenderID)))
	if sender == "" {
		return nil, ErrSenderRequired
	}
	body, err := ValidateBody(params.Body)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Message{
		ID:             MessageID(id),
		ConversationID: params.ConversationID,
		SenderID:       sender,
		Body:           body,
		CreatedAt:      now.UTC(),
	}, nil
}

func ValidateBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", ErrBodyRequired
	}
	if len([]rune(body)) > MaxBodyLength {
		return "", ErrBodyTooLong
	}
	return body, nil
}

type MessageRepository interface {
	// ByConversation returns the full stream ascending by created_at.
	ByConversation(ctx context.Context, id ConversationID) ([]*Message, error)
}
