package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainplan "memberhub/internal/domain/plan"
)

type PlanRepository struct {
	col *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) *PlanRepository {
	return &PlanRepository{col: db.Collection("agg_plan")}
}

func (r *PlanRepository) Save(ctx context.Context, p *domainplan.Plan) error {
	doc := newPlanDocument(p)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *PlanRepository) ByID(ctx context.Context, id domainplan.ID) (*domainplan.Plan, error) {
	var doc planDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainplan.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PlanRepository) ByIDs(ctx context.Context, ids []domainplan.ID) ([]*domainplan.Plan, error) {
	if len(ids) == 0 {
		return nil, nil
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
	var result []*domainplan.Plan
	for cursor.Next(ctx) {
		var doc planDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func (r *PlanRepository) List(ctx context.Context) ([]*domainplan.Plan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price_cents", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domainplan.Plan
	for cursor.Next(ctx) {
		var doc planDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func (r *PlanRepository) Delete(ctx context.Context, id domainplan.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainplan.ErrNotFound
	}
	return nil
}

type planDocument struct {
	ID         string   `bson:"_id"`
	Name       string   `bson:"name"`
	PriceCents int64    `bson:"price_cents"`
	Currency   string   `bson:"currency"`
	Interval   string   `bson:"interval"`
	Features   []string `bson:"features"`
	Active     bool     `bson:"active"`
	CreatedAt  int64    `bson:"created_at"`
	UpdatedAt  int64    `bson:"updated_at"`
}

func newPlanDocument(p *domainplan.Plan) planDocument {
	return planDocument{
		ID:         string(p.ID),
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Currency:   p.Currency,
		Interval:   string(p.Interval),
		Features:   append([]string(nil), p.Features...),
		Active:     p.Active,
		CreatedAt:  p.CreatedAt.UnixMilli(),
		UpdatedAt:  p.UpdatedAt.UnixMilli(),
	}
}

func (d planDocument) toAggregate() *domainplan.Plan {
	return &domainplan.Plan{
		ID:         domainplan.ID(d.ID),
		Name:       d.Name,
		PriceCents: d.PriceCents,
		Currency:   d.Currency,
		Interval:   domainplan.Interval(d.Interval),
		Features:   append([]string(nil), d.Features...),
		Active:     d.Active,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}
}

// SalesPageStore keeps the single landing page document.
type SalesPageStore struct {
	col *mongo.Collection
}

const salesPageDocID = "sales_page"

func NewSalesPageStore(db *mongo.Database) *SalesPageStore {
	return &SalesPageStore{col: db.Collection("app_sales_page")}
}

func (s *SalesPageStore) Get(ctx context.Context) (*domainplan.SalesPage, error) {
	var doc salesPageDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": salesPageDocID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domainplan.SalesPage{}, nil
		}
		return nil, err
	}
	return doc.toPage(), nil
}

func (s *SalesPageStore) Save(ctx context.Context, page *domainplan.SalesPage) error {
	featured := make([]string, 0, len(page.FeaturedPlanIDs))
	for _, id := range page.FeaturedPlanIDs {
		featured = append(featured, string(id))
	}
	doc := salesPageDocument{
		ID:              salesPageDocID,
		Headline:        page.Headline,
		Subheadline:     page.Subheadline,
		HeroImageURL:    page.HeroImageURL,
		FeaturedPlanIDs: featured,
		UpdatedAt:       page.UpdatedAt.UnixMilli(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type salesPageDocument struct {
	ID              string   `bson:"_id"`
	Headline        string   `bson:"headline"`
	Subheadline     string   `bson:"subheadline"`
	HeroImageURL    string   `bson:"hero_image_url"`
	FeaturedPlanIDs []string `bson:"featured_plan_ids"`
	UpdatedAt       int64    `bson:"updated_at"`
}

func (d salesPageDocument) toPage() *domainplan.SalesPage {
	featured := make([]domainplan.ID, 0, len(d.FeaturedPlanIDs))
	for _, id := range d.FeaturedPlanIDs {
		featured = append(featured, domainplan.ID(id))
	}
	return &domainplan.SalesPage{
		Headline:        d.Headline,
		Subheadline:     d.Subheadline,
		HeroImageURL:    d.HeroImageURL,
		FeaturedPlanIDs: featured,
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
}
