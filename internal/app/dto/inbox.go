package dto

import (
	"time"

	inboxsvc "memberhub/internal/app/services/inbox"
	domaininbox "memberhub/internal/domain/inbox"
)

// Conversation is a mailbox row: one thread with another member, the latest
// message preview and whether the caller still has something unread.
type Conversation struct {
	ID                string     `json:"id"`
	OtherID           string     `json:"other_id"`
	OtherUsername     string     `json:"other_username"`
	OtherDisplayName  string     `json:"other_display_name"`
	OtherAvatarURL    string     `json:"other_avatar_url,omitempty"`
	LastMessageText   string     `json:"last_message_text,omitempty"`
	LastMessageSender string     `json:"last_message_sender,omitempty"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	Unread            bool       `json:"unread"`
}

func NewConversation(summary inboxsvc.ConversationSummary) Conversation {
	conv := Conversation{
		ID:                string(summary.ID),
		OtherID:           string(summary.OtherID),
		OtherUsername:     summary.OtherUsername,
		OtherDisplayName:  summary.OtherDisplayName,
		OtherAvatarURL:    summary.OtherAvatarURL,
		LastMessageText:   summary.LastMessageText,
		LastMessageSender: string(summary.LastMessageSender),
		CreatedAt:         summary.CreatedAt,
		Unread:            summary.Unread,
	}
	if !summary.LastMessageAt.IsZero() {
		at := summary.LastMessageAt
		conv.LastMessageAt = &at
	}
	return conv
}

type ConversationList struct {
	Items []Conversation `json:"items"`
}

func NewConversationList(summaries []inboxsvc.ConversationSummary) ConversationList {
	list := ConversationList{Items: make([]Conversation, 0, len(summaries))}
	for _, summary := range summaries {
		list.Items = append(list.Items, NewConversation(summary))
	}
	return list
}

type Message struct {
	ID              string    `json:"id"`
	ConversationID  string    `json:"conversation_id"`
	SenderID        string    `json:"sender_id"`
	SenderName      string    `json:"sender_name,omitempty"`
	SenderAvatarURL string    `json:"sender_avatar_url,omitempty"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewMessage(view inboxsvc.MessageView) Message {
	return Message{
		ID:              string(view.ID),
		ConversationID:  string(view.ConversationID),
		SenderID:        string(view.SenderID),
		SenderName:      view.SenderName,
		SenderAvatarURL: view.SenderAvatarURL,
		Body:            view.Body,
		CreatedAt:       view.CreatedAt,
	}
}

func NewMessageFromDomain(msg *domaininbox.Message) Message {
	return Message{
		ID:             string(msg.ID),
		ConversationID: string(msg.ConversationID),
		SenderID:       string(msg.SenderID),
		Body:           msg.Body,
		CreatedAt:      msg.CreatedAt,
	}
}

type MessageList struct {
	Items []Message `json:"items"`
}

func NewMessageList(views []inboxsvc.MessageView) MessageList {
	list := MessageList{Items: make([]Message, 0, len(views))}
	for _, view := range views {
		list.Items = append(list.Items, NewMessage(view))
	}
	return list
}
