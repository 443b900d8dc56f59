package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaingroup "memberhub/internal/domain/group"
	domainmember "memberhub/internal/domain/member"
)

type GroupRepository struct {
	col *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{col: db.Collection("agg_group")}
}

func (r *GroupRepository) Save(ctx context.Context, g *domaingroup.Group) error {
	doc := newGroupDocument(g)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *GroupRepository) ByID(ctx context.Context, id domaingroup.ID) (*domaingroup.Group, error) {
	var doc groupDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaingroup.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *GroupRepository) List(ctx context.Context) ([]*domaingroup.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domaingroup.Group
	for cursor.Next(ctx) {
		var doc groupDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func (r *GroupRepository) Delete(ctx context.Context, id domaingroup.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaingroup.ErrNotFound
	}
	return nil
}

type groupDocument struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Description string   `bson:"description"`
	OwnerID     string   `bson:"owner_id"`
	MemberIDs   []string `bson:"member_ids"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
}

func newGroupDocument(g *domaingroup.Group) groupDocument {
	memberIDs := make([]string, 0, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		memberIDs = append(memberIDs, string(id))
	}
	return groupDocument{
		ID:          string(g.ID),
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     string(g.OwnerID),
		MemberIDs:   memberIDs,
		CreatedAt:   g.CreatedAt.UnixMilli(),
		UpdatedAt:   g.UpdatedAt.UnixMilli(),
	}
}

func (d groupDocument) toAggregate() *domaingroup.Group {
	memberIDs := make([]domainmember.ID, 0, len(d.MemberIDs))
	for _, id := range d.MemberIDs {
		memberIDs = append(memberIDs, domainmember.ID(id))
	}
	return &domaingroup.Group{
		ID:          domaingroup.ID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		OwnerID:     domainmember.ID(d.OwnerID),
		MemberIDs:   memberIDs,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}
