package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domaininbox "memberhub/internal/domain/inbox"
	domainmember "memberhub/internal/domain/member"
)

// InboxRepository keeps conversations and their message streams in memory.
// It implements both inbox.Repository and inbox.MessageRepository; the pair
// index plays the role of the unique pair_key index in Mongo.
type InboxRepository struct {
	mu        sync.RWMutex
	byID      map[domaininbox.ConversationID]*domaininbox.Conversation
	byPairKey map[string]domaininbox.ConversationID
	messages  map[domaininbox.ConversationID][]*domaininbox.Message
}

func NewInboxRepository() *InboxRepository {
	return &InboxRepository{
		byID:      make(map[domaininbox.ConversationID]*domaininbox.Conversation),
		byPairKey: make(map[string]domaininbox.ConversationID),
		messages:  make(map[domaininbox.ConversationID][]*domaininbox.Message),
	}
}

func (r *InboxRepository) GetOrCreate(ctx context.Context, conversation *domaininbox.Conversation) (*domaininbox.Conversation, bool, error) {
	if conversation == nil {
		return nil, false, domaininbox.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byPairKey[conversation.PairKey()]; ok {
		return cloneConversation(r.byID[existingID]), false, nil
	}
	stored := cloneConversation(conversation)
	r.byID[stored.ID] = stored
	r.byPairKey[stored.PairKey()] = stored.ID
	return cloneConversation(stored), true, nil
}

func (r *InboxRepository) ByID(ctx context.Context, id domaininbox.ConversationID) (*domaininbox.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byID[id]; ok {
		return cloneConversation(c), nil
	}
	return nil, domaininbox.ErrConversationNotFound
}

func (r *InboxRepository) ByParticipant(ctx context.Context, participant domainmember.ID) ([]*domaininbox.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaininbox.Conversation, 0)
	for _, c := range r.byID {
		if c.HasParticipant(participant) {
			out = append(out, cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		left, right := out[i], out[j]
		li, ri := left.LastMessageAt, right.LastMessageAt
		if li.IsZero() {
			li = left.CreatedAt
		}
		if ri.IsZero() {
			ri = right.CreatedAt
		}
		if li.Equal(ri) {
			return left.ID < right.ID
		}
		return li.After(ri)
	})
	return out, nil
}

func (r *InboxRepository) Append(ctx context.Context, msg *domaininbox.Message) error {
	if msg == nil {
		return domaininbox.ErrMessageIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.byID[msg.ConversationID]
	if !ok {
		return domaininbox.ErrConversationNotFound
	}
	if !conversation.HasParticipant(msg.SenderID) {
		return domaininbox.ErrNotParticipant
	}
	stored := *msg
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], &stored)
	conversation.LastMessageAt = msg.CreatedAt
	conversation.LastMessageText = msg.Body
	conversation.LastMessageSender = msg.SenderID
	if conversation.ParticipantOne == msg.SenderID {
		conversation.LastReadOne = msg.CreatedAt
	} else {
		conversation.LastReadTwo = msg.CreatedAt
	}
	return nil
}

func (r *InboxRepository) MarkRead(ctx context.Context, id domaininbox.ConversationID, reader domainmember.ID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.byID[id]
	if !ok {
		return domaininbox.ErrConversationNotFound
	}
	// Cursors only move forward, matching the $max update in Mongo.
	switch reader {
	case conversation.ParticipantOne:
		if at.After(conversation.LastReadOne) {
			conversation.LastReadOne = at.UTC()
		}
	case conversation.ParticipantTwo:
		if at.After(conversation.LastReadTwo) {
			conversation.LastReadTwo = at.UTC()
		}
	default:
		return domaininbox.ErrNotParticipant
	}
	return nil
}

func (r *InboxRepository) Delete(ctx context.Context, id domaininbox.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.byID[id]
	if !ok {
		return domaininbox.ErrConversationNotFound
	}
	delete(r.byPairKey, conversation.PairKey())
	delete(r.byID, id)
	delete(r.messages, id)
	return nil
}

func (r *InboxRepository) ByConversation(ctx context.Context, id domaininbox.ConversationID) ([]*domaininbox.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stream := r.messages[id]
	out := make([]*domaininbox.Message, len(stream))
	for i, msg := range stream {
		copyMsg := *msg
		out[i] = &copyMsg
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneConversation(c *domaininbox.Conversation) *domaininbox.Conversation {
	if c == nil {
		return nil
	}
	copyConv := *c
	return &copyConv
}

var _ domaininbox.Repository = (*InboxRepository)(nil)
var _ domaininbox.MessageRepository = (*InboxRepository)(nil)
