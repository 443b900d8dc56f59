package mongo

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaininbox "memberhub/internal/domain/inbox"
	domainmember "memberhub/internal/domain/member"
)

// InboxRepository persists conversations and their message streams. The
// participant pair is kept under a unique index on pair_key, which is what
// makes GetOrCreate race-free: the second concurrent insert loses and reads
// the winner's row.
type InboxRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewInboxRepository(db *mongo.Database) *InboxRepository {
	conversations := db.Collection("agg_conversation")
	_, _ = conversations.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_pair_key"),
	})
	_, _ = conversations.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}, {Key: "last_message_at", Value: -1}},
	})
	messages := db.Collection("msg_message")
	_, _ = messages.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return &InboxRepository{conversations: conversations, messages: messages}
}

func (r *InboxRepository) GetOrCreate(ctx context.Context, conversation *domaininbox.Conversation) (*domaininbox.Conversation, bool, error) {
	doc := newConversationDocument(conversation)
	if _, err := r.conversations.InsertOne(ctx, doc); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, err
		}
		existing, err := r.byPairKey(ctx, conversation.PairKey())
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return conversation, true, nil
}

func (r *InboxRepository) ByID(ctx context.Context, id domaininbox.ConversationID) (*domaininbox.Conversation, error) {
	var doc conversationDocument
	if err := r.conversations.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininbox.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *InboxRepository) ByParticipant(ctx context.Context, participant domainmember.ID) ([]*domaininbox.Conversation, error) {
	cursor, err := r.conversations.Find(ctx, bson.M{"participants": string(participant)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domaininbox.Conversation
	for cursor.Next(ctx) {
		var doc conversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	// Most recent activity first; conversations without messages sort by
	// creation time.
	sort.Slice(result, func(i, j int) bool {
		return activityTime(result[i]).After(activityTime(result[j]))
	})
	return result, nil
}

// Append inserts the message, then advances the conversation's preview and
// the sender's read cursor in one conversation-document update. Sending is
// always a read of your own message.
func (r *InboxRepository) Append(ctx context.Context, msg *domaininbox.Message) error {
	conversation, err := r.ByID(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(msg.SenderID) {
		return domaininbox.ErrNotParticipant
	}
	at := msg.CreatedAt.UnixMilli()
	set := bson.M{
		"last_message_at":     at,
		"last_message_text":   msg.Body,
		"last_message_sender": string(msg.SenderID),
	}
	if conversation.ParticipantOne == msg.SenderID {
		set["last_read_one"] = at
	} else {
		set["last_read_two"] = at
	}
	// Both writes commit together: a stored message always comes with the
	// matching preview and sender cursor.
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.messages.InsertOne(sc, newMessageDocument(msg)); err != nil {
			return err
		}
		res, err := r.conversations.UpdateByID(sc, string(msg.ConversationID), bson.M{"$set": set})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domaininbox.ErrConversationNotFound
		}
		return nil
	})
}

func (r *InboxRepository) MarkRead(ctx context.Context, id domaininbox.ConversationID, reader domainmember.ID, at time.Time) error {
	conversation, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(reader) {
		return domaininbox.ErrNotParticipant
	}
	field := "last_read_two"
	if conversation.ParticipantOne == reader {
		field = "last_read_one"
	}
	// $max keeps the cursor monotonic under concurrent marks.
	_, err = r.conversations.UpdateByID(ctx, string(id), bson.M{"$max": bson.M{field: at.UnixMilli()}})
	return err
}

// Delete removes the conversation and its messages together, so a
// partial failure can never strand an orphaned message stream.
func (r *InboxRepository) Delete(ctx context.Context, id domaininbox.ConversationID) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.conversations.DeleteOne(sc, bson.M{"_id": string(id)})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return domaininbox.ErrConversationNotFound
		}
		_, err = r.messages.DeleteMany(sc, bson.M{"conversation_id": string(id)})
		return err
	})
}

// inTransaction runs fn inside a driver session so multi-collection
// writes commit or abort as one unit. Requires Mongo to run as a
// replica set.
func (r *InboxRepository) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.conversations.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// ByConversation returns the full message stream, oldest first.
func (r *InboxRepository) ByConversation(ctx context.Context, id domaininbox.ConversationID) ([]*domaininbox.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": string(id)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domaininbox.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toMessage())
	}
	return result, cursor.Err()
}

func (r *InboxRepository) byPairKey(ctx context.Context, pairKey string) (*domaininbox.Conversation, error) {
	var doc conversationDocument
	if err := r.conversations.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininbox.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func activityTime(c *domaininbox.Conversation) time.Time {
	if !c.LastMessageAt.IsZero() {
		return c.LastMessageAt
	}
	return c.CreatedAt
}

type conversationDocument struct {
	ID                string   `bson:"_id"`
	PairKey           string   `bson:"pair_key"`
	Participants      []string `bson:"participants"`
	CreatedBy         string   `bson:"created_by"`
	CreatedAt         int64    `bson:"created_at"`
	LastMessageAt     int64    `bson:"last_message_at"`
	LastReadOne       int64    `bson:"last_read_one"`
	LastReadTwo       int64    `bson:"last_read_two"`
	LastMessageText   string   `bson:"last_message_text"`
	LastMessageSender string   `bson:"last_message_sender"`
}

func newConversationDocument(c *domaininbox.Conversation) conversationDocument {
	return conversationDocument{
		ID:                string(c.ID),
		PairKey:           c.PairKey(),
		Participants:      []string{string(c.ParticipantOne), string(c.ParticipantTwo)},
		CreatedBy:         string(c.CreatedBy),
		CreatedAt:         c.CreatedAt.UnixMilli(),
		LastMessageAt:     optionalTimestamp(c.LastMessageAt),
		LastReadOne:       optionalTimestamp(c.LastReadOne),
		LastReadTwo:       optionalTimestamp(c.LastReadTwo),
		LastMessageText:   c.LastMessageText,
		LastMessageSender: string(c.LastMessageSender),
	}
}

func (d conversationDocument) toAggregate() *domaininbox.Conversation {
	c := &domaininbox.Conversation{
		ID:                domaininbox.ConversationID(d.ID),
		CreatedBy:         domainmember.ID(d.CreatedBy),
		CreatedAt:         timestampToTime(d.CreatedAt),
		LastMessageAt:     optionalTime(d.LastMessageAt),
		LastReadOne:       optionalTime(d.LastReadOne),
		LastReadTwo:       optionalTime(d.LastReadTwo),
		LastMessageText:   d.LastMessageText,
		LastMessageSender: domainmember.ID(d.LastMessageSender),
	}
	if len(d.Participants) == 2 {
		c.ParticipantOne = domainmember.ID(d.Participants[0])
		c.ParticipantTwo = domainmember.ID(d.Participants[1])
	}
	return c
}

type messageDocument struct {
	ID             string `bson:"_id"`
	ConversationID string `bson:"conversation_id"`
	SenderID       string `bson:"sender_id"`
	Body           string `bson:"body"`
	CreatedAt      int64  `bson:"created_at"`
}

func newMessageDocument(m *domaininbox.Message) messageDocument {
	return messageDocument{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       string(m.SenderID),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toMessage() *domaininbox.Message {
	return &domaininbox.Message{
		ID:             domaininbox.MessageID(d.ID),
		ConversationID: domaininbox.ConversationID(d.ConversationID),
		SenderID:       domainmember.ID(d.SenderID),
		Body:           d.Body,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
}

func optionalTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func optionalTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
