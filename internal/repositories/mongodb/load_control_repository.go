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

var _ repositories.LoadControlRepository = (*LoadControlRepository)(nil)

// LoadControlRepository handles the single load-control document
type LoadControlRepository struct {
	events
	collection *mongo.Collection
}

// NewLoadControlRepository creates a new LoadControlRepository
func NewLoadControlRepository(db *mongo.Database, notifier notify.Notifier) *LoadControlRepository {
	return &LoadControlRepository{
		events:     events{name: models.CollectionLoadControl, notifier: notifier},
		collection: db.Collection(models.CollectionLoadControl),
	}
}

// Get returns the singleton
func (r *LoadControlRepository) Get(ctx context.Context) (*models.LoadControl, error) {
	var lc models.LoadControl
	if err := r.collection.FindOne(ctx, bson.M{}).Decode(&lc); err != nil {
		return nil, notFound(err)
	}
	return &lc, nil
}

// Upsert updates the existing document in place, or inserts the first one.
// The empty filter matches whichever document already exists.
func (r *LoadControlRepository) Upsert(ctx context.Context, lc *models.LoadControl) (*models.LoadControl, error) {
	set := bson.M{
		"lasto":     lc.Lasto,
		"swertres":  lc.Swertres,
		"pick3":     lc.Pick3,
		"fourD60":   lc.FourD60,
		"dateToday": lc.DateToday,
		"updatedAt": time.Now(),
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	if lc.ControlNumbers != nil {
		set["controlNumbers"] = lc.ControlNumbers
	} else {
		update["$unset"] = bson.M{"controlNumbers": ""}
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.LoadControl
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	r.publish(models.OpUpdate, saved.ID)
	return &saved, nil
}
