package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.ResultRepository = (*ResultRepository)(nil)

// ResultRepository handles MongoDB operations for Result
type ResultRepository struct {
	events
	collection *mongo.Collection
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(db *mongo.Database, notifier notify.Notifier) *ResultRepository {
	return &ResultRepository{
		events:     events{name: models.CollectionResults, notifier: notifier},
		collection: db.Collection(models.CollectionResults),
	}
}

// FindByDate finds the results published for a date
func (r *ResultRepository) FindByDate(ctx context.Context, date string) (*models.Result, error) {
	var result models.Result
	if err := r.collection.FindOne(ctx, bson.M{"date": date}).Decode(&result); err != nil {
		return nil, notFound(err)
	}
	return &result, nil
}

// Upsert writes the given fields onto the date's document, creating it when needed
func (r *ResultRepository) Upsert(ctx context.Context, date string, fields map[string]string) (*models.Result, error) {
	set := bson.M{"timestamp": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "date": date},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var result models.Result
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"date": date}, update, opts).Decode(&result); err != nil {
		return nil, err
	}
	r.publish(models.OpUpdate, result.ID)
	return &result, nil
}

// FindLatest returns the most recent results, newest first
func (r *ResultRepository) FindLatest(ctx context.Context, limit int) ([]*models.Result, error) {
	opts := options.Find().SetSort(bson.M{"date": -1}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*models.Result
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []*models.Result{}
	}
	return results, nil
}
