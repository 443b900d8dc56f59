package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainmember "memberhub/internal/domain/member"
	domainupdate "memberhub/internal/domain/update"
)

type UpdateRepository struct {
	col *mongo.Collection
}

func NewUpdateRepository(db *mongo.Database) *UpdateRepository {
	col := db.Collection("agg_site_update")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "published_at", Value: -1}},
	})
	return &UpdateRepository{col: col}
}

func (r *UpdateRepository) Save(ctx context.Context, u *domainupdate.SiteUpdate) error {
	doc := newUpdateDocument(u)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *UpdateRepository) ByID(ctx context.Context, id domainupdate.ID) (*domainupdate.SiteUpdate, error) {
	var doc updateDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainupdate.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// List returns updates newest first.
func (r *UpdateRepository) List(ctx context.Context) ([]*domainupdate.SiteUpdate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domainupdate.SiteUpdate
	for cursor.Next(ctx) {
		var doc updateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func (r *UpdateRepository) Delete(ctx context.Context, id domainupdate.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainupdate.ErrNotFound
	}
	return nil
}

type updateDocument struct {
	ID          string `bson:"_id"`
	Title       string `bson:"title"`
	Body        string `bson:"body"`
	AuthorID    string `bson:"author_id"`
	PublishedAt int64  `bson:"published_at"`
}

func newUpdateDocument(u *domainupdate.SiteUpdate) updateDocument {
	return updateDocument{
		ID:          string(u.ID),
		Title:       u.Title,
		Body:        u.Body,
		AuthorID:    string(u.AuthorID),
		PublishedAt: u.PublishedAt.UnixMilli(),
	}
}

func (d updateDocument) toAggregate() *domainupdate.SiteUpdate {
	return &domainupdate.SiteUpdate{
		ID:          domainupdate.ID(d.ID),
		Title:       d.Title,
		Body:        d.Body,
		AuthorID:    domainmember.ID(d.AuthorID),
		PublishedAt: timestampToTime(d.PublishedAt),
	}
}

// ReceiptStore tracks which member has read which update. The compound
// unique index makes Add idempotent.
type ReceiptStore struct {
	col *mongo.Collection
}

func NewReceiptStore(db *mongo.Database) *ReceiptStore {
	col := db.Collection("app_update_receipt")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "update_id", Value: 1}, {Key: "member_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_update_member"),
	})
	return &ReceiptStore{col: col}
}

func (s *ReceiptStore) Add(ctx context.Context, receipt domainupdate.Receipt) error {
	doc := newReceiptDocument(receipt)
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *ReceiptStore) AddAll(ctx context.Context, receipts []domainupdate.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(receipts))
	for _, receipt := range receipts {
		docs = append(docs, newReceiptDocument(receipt))
	}
	opts := options.InsertMany().SetOrdered(false)
	if _, err := s.col.InsertMany(ctx, docs, opts); err != nil {
		// Unordered insert keeps going past duplicates; those are fine.
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			for _, we := range bulkErr.WriteErrors {
				if we.Code != 11000 {
					return err
				}
			}
			return nil
		}
		return err
	}
	return nil
}

func (s *ReceiptStore) ReadSet(ctx context.Context, memberID domainmember.ID) (map[domainupdate.ID]struct{}, error) {
	cursor, err := s.col.Find(ctx, bson.M{"member_id": string(memberID)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	result := make(map[domainupdate.ID]struct{})
	for cursor.Next(ctx) {
		var doc receiptDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result[domainupdate.ID(doc.UpdateID)] = struct{}{}
	}
	return result, cursor.Err()
}

func (s *ReceiptStore) DeleteByUpdate(ctx context.Context, updateID domainupdate.ID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"update_id": string(updateID)})
	return err
}

type receiptDocument struct {
	ID       string `bson:"_id"`
	UpdateID string `bson:"update_id"`
	MemberID string `bson:"member_id"`
	ReadAt   int64  `bson:"read_at"`
}

func newReceiptDocument(receipt domainupdate.Receipt) receiptDocument {
	return receiptDocument{
		ID:       string(receipt.UpdateID) + "|" + string(receipt.MemberID),
		UpdateID: string(receipt.UpdateID),
		MemberID: string(receipt.MemberID),
		ReadAt:   receipt.ReadAt.UnixMilli(),
	}
}
