package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainauth "memberhub/internal/domain/auth"
	domainmember "memberhub/internal/domain/member"
)

// SessionStore keeps bearer sessions in Mongo with a TTL index, so expired
// tokens disappear without a sweeper.
type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	col := db.Collection("app_sessions")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "member_id", Value: 1}},
	})
	return &SessionStore{col: col}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	doc := newSessionDocument(session)
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var doc sessionDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(token)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	session := doc.toSession()
	// The TTL monitor runs about once a minute; treat stale rows as gone.
	if session.Expired(time.Now()) {
		_, _ = s.col.DeleteOne(ctx, bson.M{"_id": doc.ID})
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": string(token)})
	return err
}

func (s *SessionStore) DeleteByMember(ctx context.Context, memberID domainmember.ID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"member_id": string(memberID)})
	return err
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	MemberID  string    `bson:"member_id"`
	Roles     []string  `bson:"roles"`
	CreatedAt int64     `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func newSessionDocument(session *domainauth.Session) sessionDocument {
	roles := make([]string, 0, len(session.Roles))
	for _, role := range session.Roles {
		roles = append(roles, string(role))
	}
	return sessionDocument{
		ID:        string(session.Token),
		MemberID:  string(session.MemberID),
		Roles:     roles,
		CreatedAt: session.CreatedAt.UnixMilli(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}
}

func (d sessionDocument) toSession() *domainauth.Session {
	roles := make([]domainmember.Role, 0, len(d.Roles))
	for _, role := range d.Roles {
		roles = append(roles, domainmember.Role(role))
	}
	return &domainauth.Session{
		Token:     domainauth.Token(d.ID),
		MemberID:  domainmember.ID(d.MemberID),
		Roles:     roles,
		CreatedAt: timestampToTime(d.CreatedAt),
		ExpiresAt: d.ExpiresAt.UTC(),
	}
}
