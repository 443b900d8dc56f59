package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"memberhub/internal/app/idempotency"
	appoutbox "memberhub/internal/app/outbox"
	domaininbox "memberhub/internal/domain/inbox"
	domainmember "memberhub/internal/domain/member"
)

// Service implements the messaging feature: starting 1:1 conversations,
// listing a member's mailbox, sending and reading messages. All operations
// take the caller's identity explicitly; there is no ambient session state.
type Service struct {
	Conversations domaininbox.Repository
	MessageLog    domaininbox.MessageRepository
	Members       domainmember.Repository
	Outbox        appoutbox.Outbox
	Idempotency   idempotency.Store
	Logger        *slog.Logger
	Clock         func() time.Time
}

// ConversationSummary is a mailbox row: the other participant resolved to a
// displayable profile, the latest message preview, and the unread flag.
type ConversationSummary struct {
	ID                domaininbox.ConversationID
	OtherID           domainmember.ID
	OtherUsername     string
	OtherDisplayName  string
	OtherAvatarURL    string
	LastMessageText   string
	LastMessageSender domainmember.ID
	LastMessageAt     time.Time
	CreatedAt         time.Time
	Unread            bool
}

// MessageView is a message joined with its sender's profile.
type MessageView struct {
	ID              domaininbox.MessageID
	ConversationID  domaininbox.ConversationID
	SenderID        domainmember.ID
	SenderName      string
	SenderAvatarURL string
	Body            string
	CreatedAt       time.Time
}

// Start returns the conversation between the caller and the other member,
// creating it when absent. The repository upsert is atomic on the canonical
// pair key, so concurrent calls from both sides converge on one thread.
func (s *Service) Start(ctx context.Context, callerID, otherID domainmember.ID) (*domaininbox.Conversation, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	otherID = domainmember.ID(strings.TrimSpace(string(otherID)))
	if _, err := s.Members.ByID(ctx, otherID); err != nil {
		return nil, err
	}
	candidate, err := domaininbox.NewConversation(domaininbox.NewConversationParams{
		ID:        domaininbox.ConversationID(uuid.NewString()),
		CreatedBy: callerID,
		Other:     otherID,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	conversation, created, err := s.Conversations.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if created && s.Logger != nil {
		s.Logger.Info("conversation created", "conversation_id", conversation.ID, "created_by", callerID)
	}
	return conversation, nil
}

// ListConversations assembles the caller's mailbox ordered by most recent
// activity. Profiles for the opposite participants are fetched in one batch;
// the latest-message preview is denormalized on the conversation itself.
func (s *Service) ListConversations(ctx context.Context, callerID domainmember.ID) ([]ConversationSummary, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	conversations, err := s.Conversations.ByParticipant(ctx, callerID)
	if err != nil {
		return nil, err
	}
	otherIDs := make([]domainmember.ID, 0, len(conversations))
	for _, c := range conversations {
		otherIDs = append(otherIDs, c.Other(callerID))
	}
	profiles, err := s.Members.ByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summary := ConversationSummary{
			ID:                c.ID,
			OtherID:           c.Other(callerID),
			LastMessageText:   c.LastMessageText,
			LastMessageSender: c.LastMessageSender,
			LastMessageAt:     c.LastMessageAt,
			CreatedAt:         c.CreatedAt,
			Unread:            c.UnreadFor(callerID),
		}
		if profile, ok := profiles[summary.OtherID]; ok {
			summary.OtherUsername = profile.Username
			summary.OtherDisplayName = profile.DisplayName
			summary.OtherAvatarURL = profile.AvatarURL
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Messages returns the conversation stream ascending by creation time, each
// entry joined with the sender's profile.
func (s *Service) Messages(ctx context.Context, callerID domainmember.ID, conversationID domaininbox.ConversationID) ([]MessageView, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if _, err := s.participantConversation(ctx, callerID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.MessageLog.ByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	senderIDs := make([]domainmember.ID, 0, 2)
	seen := make(map[domainmember.ID]struct{}, 2)
	for _, msg := range messages {
		if _, ok := seen[msg.SenderID]; ok {
			continue
		}
		seen[msg.SenderID] = struct{}{}
		senderIDs = append(senderIDs, msg.SenderID)
	}
	profiles, err := s.Members.ByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		view := MessageView{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Body:           msg.Body,
			CreatedAt:      msg.CreatedAt,
		}
		if profile, ok := profiles[msg.SenderID]; ok {
			view.SenderName = profile.DisplayName
			view.SenderAvatarURL = profile.AvatarURL
		}
		views = append(views, view)
	}
	return views, nil
}

// Send appends a message. The repository advances last_message_at and the
// sender's own read cursor to the message timestamp in the same atomic step,
// so the sender never sees their own message as unread and the mailbox order
// can never lag behind the stream. An optional idempotency key absorbs
// double submission from a slow client.
func (s *Service) Send(ctx context.Context, callerID domainmember.ID, conversationID domaininbox.ConversationID, body, idempotencyKey string) (*domaininbox.Message, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" && s.Idempotency != nil {
		if rec, found, err := s.Idempotency.Get(ctx, idempotencyKey); err != nil {
			return nil, err
		} else if found {
			if rec.Error != "" {
				return nil, errors.New(rec.Error)
			}
			var msg domaininbox.Message
			if err := json.Unmarshal(rec.Payload, &msg); err != nil {
				return nil, err
			}
			return &msg, nil
		}
	}

	conversation, err := s.participantConversation(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}
	msg, err := domaininbox.NewMessage(domaininbox.NewMessageParams{
		ID:             domaininbox.MessageID(uuid.NewString()),
		ConversationID: conversation.ID,
		SenderID:       callerID,
		Body:           body,
		Now:            s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Conversations.Append(ctx, msg); err != nil {
		return nil, err
	}
	event := domaininbox.NewMessageSentEvent(msg, string(conversation.Other(callerID)), msg.CreatedAt)
	if err := appoutbox.Record(ctx, s.Outbox, nil, event); err != nil && s.Logger != nil {
		s.Logger.Error("message event not recorded", "error", err, "conversation_id", conversation.ID)
	}
	if idempotencyKey != "" && s.Idempotency != nil {
		payload, err := json.Marshal(msg)
		if err == nil {
			err = s.Idempotency.Save(ctx, idempotency.Record{
				Key:        idempotencyKey,
				Payload:    payload,
				OccurredAt: s.now(),
			})
		}
		if err != nil && s.Logger != nil {
			s.Logger.Warn("idempotency record not saved", "error", err, "key", idempotencyKey)
		}
	}
	return msg, nil
}

// MarkRead moves the caller's read cursor to now.
func (s *Service) MarkRead(ctx context.Context, callerID domainmember.ID, conversationID domaininbox.ConversationID) (time.Time, error) {
	if err := s.ensureDependencies(); err != nil {
		return time.Time{}, err
	}
	if _, err := s.participantConversation(ctx, callerID, conversationID); err != nil {
		return time.Time{}, err
	}
	at := s.now().UTC()
	if err := s.Conversations.MarkRead(ctx, conversationID, callerID, at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// Delete removes the conversation and its messages. Only participants may
// delete a thread.
func (s *Service) Delete(ctx context.Context, callerID domainmember.ID, conversationID domaininbox.ConversationID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if _, err := s.participantConversation(ctx, callerID, conversationID); err != nil {
		return err
	}
	return s.Conversations.Delete(ctx, conversationID)
}

func (s *Service) participantConversation(ctx context.Context, callerID domainmember.ID, conversationID domaininbox.ConversationID) (*domaininbox.Conversation, error) {
	conversation, err := s.Conversations.ByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(callerID) {
		return nil, domaininbox.ErrNotParticipant
	}
	return conversation, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Conversations == nil:
		return errors.New("inbox: conversation repository required")
	case s.MessageLog == nil:
		return errors.New("inbox: message repository required")
	case s.Members == nil:
		return errors.New("inbox: member repository required")
	default:
		return nil
	}
}
