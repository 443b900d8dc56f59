package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincourse "memberhub/internal/domain/course"
)

type CourseRepository struct {
	col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	col := db.Collection("agg_course")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &CourseRepository{col: col}
}

func (r *CourseRepository) Save(ctx context.Context, c *domaincourse.Course) error {
	doc := newCourseDocument(c)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *CourseRepository) ByID(ctx context.Context, id domaincourse.ID) (*domaincourse.Course, error) {
	var doc courseDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincourse.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CourseRepository) List(ctx context.Context, onlyPublished bool) ([]*domaincourse.Course, error) {
	filter := bson.M{}
	if onlyPublished {
		filter["status"] = string(domaincourse.StatusPublished)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domaincourse.Course
	for cursor.Next(ctx) {
		var doc courseDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

type courseDocument struct {
	ID          string           `bson:"_id"`
	Title       string           `bson:"title"`
	Description string           `bson:"description"`
	CoverURL    string           `bson:"cover_url"`
	Status      string           `bson:"status"`
	Lessons     []lessonDocument `bson:"lessons"`
	CreatedAt   int64            `bson:"created_at"`
	UpdatedAt   int64            `bson:"updated_at"`
}

type lessonDocument struct {
	ID       string `bson:"id"`
	Title    string `bson:"title"`
	Body     string `bson:"body"`
	VideoURL string `bson:"video_url"`
	Position int    `bson:"position"`
}

func newCourseDocument(c *domaincourse.Course) courseDocument {
	lessons := make([]lessonDocument, 0, len(c.Lessons))
	for _, lesson := range c.Lessons {
		lessons = append(lessons, lessonDocument{
			ID:       lesson.ID,
			Title:    lesson.Title,
			Body:     lesson.Body,
			VideoURL: lesson.VideoURL,
			Position: lesson.Position,
		})
	}
	return courseDocument{
		ID:          string(c.ID),
		Title:       c.Title,
		Description: c.Description,
		CoverURL:    c.CoverURL,
		Status:      string(c.Status),
		Lessons:     lessons,
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
	}
}

func (d courseDocument) toAggregate() *domaincourse.Course {
	lessons := make([]domaincourse.Lesson, 0, len(d.Lessons))
	for _, lesson := range d.Lessons {
		lessons = append(lessons, domaincourse.Lesson{
			ID:       lesson.ID,
			Title:    lesson.Title,
			Body:     lesson.Body,
			VideoURL: lesson.VideoURL,
			Position: lesson.Position,
		})
	}
	return &domaincourse.Course{
		ID:          domaincourse.ID(d.ID),
		Title:       d.Title,
		Description: d.Description,
		CoverURL:    d.CoverURL,
		Status:      domaincourse.Status(d.Status),
		Lessons:     lessons,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}
