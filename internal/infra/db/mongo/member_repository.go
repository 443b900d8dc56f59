package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainmember "memberhub/internal/domain/member"
)

type MemberRepository struct {
	col *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) *MemberRepository {
	col := db.Collection("agg_member")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	return &MemberRepository{col: col}
}

func (r *MemberRepository) ByID(ctx context.Context, id domainmember.ID) (*domainmember.Member, error) {
	var doc memberDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainmember.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *MemberRepository) ByIDs(ctx context.Context, ids []domainmember.ID) (map[domainmember.ID]*domainmember.Member, error) {
	result := make(map[domainmember.ID]*domainmember.Member, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": raw}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc memberDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		m := doc.toAggregate()
		result[m.ID] = m
	}
	return result, cursor.Err()
}

func (r *MemberRepository) ByEmail(ctx context.Context, email string) (*domainmember.Member, error) {
	var doc memberDocument
	if err := r.col.FindOne(ctx, bson.M{"email": domainmember.NormalizeEmail(email)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainmember.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *MemberRepository) Save(ctx context.Context, m *domainmember.Member) error {
	doc := newMemberDocument(m)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "uniq_username") {
				return domainmember.ErrUsernameAlreadyUsed
			}
			return domainmember.ErrEmailAlreadyUsed
		}
		return err
	}
	return nil
}

func (r *MemberRepository) List(ctx context.Context, params domainmember.ListParams) ([]*domainmember.Member, int, error) {
	filter := bson.M{}
	if query := strings.TrimSpace(params.Query); query != "" {
		pattern := bson.M{"$regex": query, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"display_name": pattern},
			bson.M{"email": pattern},
		}
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if params.Offset > 0 {
		opts.SetSkip(int64(params.Offset))
	}
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	var members []*domainmember.Member
	for cursor.Next(ctx) {
		var doc memberDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		members = append(members, doc.toAggregate())
	}
	return members, int(total), cursor.Err()
}

type memberDocument struct {
	ID           string   `bson:"_id"`
	Email        string   `bson:"email"`
	Username     string   `bson:"username"`
	DisplayName  string   `bson:"display_name"`
	Bio          string   `bson:"bio"`
	AvatarURL    string   `bson:"avatar_url"`
	PasswordHash string   `bson:"password_hash"`
	Roles        []string `bson:"roles"`
	Blocked      bool     `bson:"blocked"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newMemberDocument(m *domainmember.Member) memberDocument {
	roles := make([]string, 0, len(m.Roles))
	for _, role := range m.Roles {
		roles = append(roles, string(role))
	}
	return memberDocument{
		ID:           string(m.ID),
		Email:        m.Email,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Bio:          m.Bio,
		AvatarURL:    m.AvatarURL,
		PasswordHash: m.PasswordHash,
		Roles:        roles,
		Blocked:      m.Blocked,
		CreatedAt:    m.CreatedAt.UnixMilli(),
		UpdatedAt:    m.UpdatedAt.UnixMilli(),
	}
}

func (d memberDocument) toAggregate() *domainmember.Member {
	roles := make([]domainmember.Role, 0, len(d.Roles))
	for _, role := range d.Roles {
		roles = append(roles, domainmember.Role(role))
	}
	return &domainmember.Member{
		ID:           domainmember.ID(d.ID),
		Email:        d.Email,
		Username:     d.Username,
		DisplayName:  d.DisplayName,
		Bio:          d.Bio,
		AvatarURL:    d.AvatarURL,
		PasswordHash: d.PasswordHash,
		Roles:        roles,
		Blocked:      d.Blocked,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
