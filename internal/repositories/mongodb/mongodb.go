// Package mongodb holds the MongoDB implementations of the repository interfaces.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// notFound maps the driver's empty result onto repositories.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

// events ties a collection to the change notifier.
type events struct {
	name     string
	notifier notify.Notifier
}

func (e events) publish(op string, id primitive.ObjectID) {
	if e.notifier != nil {
		e.notifier.Publish(models.NewChangeEvent(e.name, op, id))
	}
}

// Subscribe opens a change subscription scoped to the collection.
func (e events) Subscribe(ctx context.Context) *notify.Subscription {
	return e.notifier.Subscribe(ctx, e.name)
}

// EnsureIndexes creates the indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db, identityDB *mongo.Database) error {
	specs := []struct {
		db    *mongo.Database
		coll  string
		model mongo.IndexModel
	}{
		{db, models.CollectionUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{identityDB, models.CollectionIdentities, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{db, models.CollectionResults, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{db, models.CollectionBets, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "drawDate.date", Value: 1}}}},
		{db, models.CollectionBets, mongo.IndexModel{Keys: bson.D{{Key: "drawDate.date", Value: 1}, {Key: "drawDate.time", Value: 1}}}},
	}
	for _, s := range specs {
		if _, err := s.db.Collection(s.coll).Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("create index on %s: %w", s.coll, err)
		}
	}
	return nil
}
