package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ChangeStreamWatcher feeds database change events into a hub so that every
// API instance sees writes made by the others. It needs a replica set.
type ChangeStreamWatcher struct {
	db     *mongo.Database
	hub    *notify.Hub
	logger *zap.Logger
}

// NewChangeStreamWatcher creates a watcher over the whole database.
func NewChangeStreamWatcher(db *mongo.Database, hub *notify.Hub, logger *zap.Logger) *ChangeStreamWatcher {
	return &ChangeStreamWatcher{db: db, hub: hub, logger: logger}
}

type changeDoc struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// Run blocks until ctx is done or the stream fails.
func (w *ChangeStreamWatcher) Run(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
			"ns.coll": bson.M{"$in": bson.A{
				models.CollectionUsers, models.CollectionBets,
				models.CollectionResults, models.CollectionLoadControl,
			}},
		}}},
	}
	stream, err := w.db.Watch(ctx, pipeline, options.ChangeStream().SetMaxAwaitTime(2*time.Second))
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	w.logger.Info("change stream started", zap.String("database", w.db.Name()))
	for stream.Next(ctx) {
		var doc changeDoc
		if err := stream.Decode(&doc); err != nil {
			w.logger.Warn("undecodable change event", zap.Error(err))
			continue
		}
		w.hub.Publish(models.ChangeEvent{
			Collection: doc.NS.Coll,
			Operation:  operation(doc.OperationType),
			DocumentID: doc.DocumentKey.ID,
			At:         time.Now(),
		})
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change stream: %w", err)
	}
	w.logger.Info("change stream stopped")
	return nil
}

func operation(op string) string {
	switch op {
	case "insert":
		return models.OpInsert
	case "delete":
		return models.OpDelete
	}
	return models.OpUpdate
}
