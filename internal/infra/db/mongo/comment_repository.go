package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincomment "memberhub/internal/domain/comment"
	domainmember "memberhub/internal/domain/member"
)

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	col := db.Collection("agg_comment")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &CommentRepository{col: col}
}

func (r *CommentRepository) Save(ctx context.Context, c *domaincomment.Comment) error {
	doc := newCommentDocument(c)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *CommentRepository) ByID(ctx context.Context, id domaincomment.ID) (*domaincomment.Comment, error) {
	var doc commentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincomment.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CommentRepository) List(ctx context.Context, params domaincomment.ListParams) ([]*domaincomment.Comment, int, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	if params.Context != "" {
		filter["context"] = string(params.Context)
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
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
	var result []*domaincomment.Comment
	for cursor.Next(ctx) {
		var doc commentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, int(total), cursor.Err()
}

func (r *CommentRepository) Delete(ctx context.Context, id domaincomment.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaincomment.ErrNotFound
	}
	return nil
}

type commentDocument struct {
	ID            string `bson:"_id"`
	AuthorID      string `bson:"author_id"`
	Body          string `bson:"body"`
	Context       string `bson:"context"`
	ContextRefID  string `bson:"context_ref_id"`
	Status        string `bson:"status"`
	ModeratorNote string `bson:"moderator_note"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func newCommentDocument(c *domaincomment.Comment) commentDocument {
	return commentDocument{
		ID:            string(c.ID),
		AuthorID:      string(c.AuthorID),
		Body:          c.Body,
		Context:       string(c.Context),
		ContextRefID:  c.ContextRefID,
		Status:        string(c.Status),
		ModeratorNote: c.ModeratorNote,
		CreatedAt:     c.CreatedAt.UnixMilli(),
		UpdatedAt:     c.UpdatedAt.UnixMilli(),
	}
}

func (d commentDocument) toAggregate() *domaincomment.Comment {
	return &domaincomment.Comment{
		ID:            domaincomment.ID(d.ID),
		AuthorID:      domainmember.ID(d.AuthorID),
		Body:          d.Body,
		Context:       domaincomment.Context(d.Context),
		ContextRefID:  d.ContextRefID,
		Status:        domaincomment.Status(d.Status),
		ModeratorNote: d.ModeratorNote,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}
