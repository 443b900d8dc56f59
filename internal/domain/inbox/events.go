package inbox

import (
	"time"

	"memberhub/internal/domain/shared/events"
)

const MessageSentEventName = "inbox.message_sent"

// MessageSentEvent is recorded to the outbox whenever a message lands, so
// downstream consumers (notification mailers and the like) can react.
type MessageSentEvent struct {
	events.Base
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	RecipientID    string `json:"recipient_id"`
	Preview        string `json:"preview"`
}

func NewMessageSentEvent(msg *Message, recipient string, at time.Time) MessageSentEvent {
	preview := msg.Body
	if runes := []rune(preview); len(runes) > 140 {
		preview = string(runes[:140])
	}
	return MessageSentEvent{
		Base:           events.New(MessageSentEventName, string(msg.ConversationID), at),
		MessageID:      string(msg.ID),
		ConversationID: string(msg.ConversationID),
		SenderID:       string(msg.SenderID),
		RecipientID:    recipient,
		Preview:        preview,
	}
}
