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

var _ repositories.BetRepository = (*BetRepository)(nil)

// BetRepository handles MongoDB operations for Bet
type BetRepository struct {
	events
	collection *mongo.Collection
}

// NewBetRepository creates a new BetRepository
func NewBetRepository(db *mongo.Database, notifier notify.Notifier) *BetRepository {
	return &BetRepository{
		events:     events{name: models.CollectionBets, notifier: notifier},
		collection: db.Collection(models.CollectionBets),
	}
}

// Create inserts a new bet slip
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	bet.ID = primitive.NewObjectID()
	bet.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, bet); err != nil {
		return err
	}
	r.publish(models.OpInsert, bet.ID)
	return nil
}

// InsertMany re-inserts bets with their existing IDs
func (r *BetRepository) InsertMany(ctx context.Context, bets []*models.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	docs := make([]interface{}, len(bets))
	for i, b := range bets {
		docs[i] = b
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return err
	}
	for _, b := range bets {
		r.publish(models.OpInsert, b.ID)
	}
	return nil
}

// FindByID finds a bet by ID
func (r *BetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error) {
	var bet models.Bet
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bet); err != nil {
		return nil, notFound(err)
	}
	return &bet, nil
}

// FindByUser returns every bet placed by the given email
func (r *BetRepository) FindByUser(ctx context.Context, email string) ([]*models.Bet, error) {
	return r.find(ctx, bson.M{"user": email})
}

// FindByUserAndDate returns a user's bets for one draw date
func (r *BetRepository) FindByUserAndDate(ctx context.Context, email, date string) ([]*models.Bet, error) {
	return r.find(ctx, bson.M{"user": email, "drawDate.date": date})
}

// FindByDateRange returns bets drawn between from and to inclusive
func (r *BetRepository) FindByDateRange(ctx context.Context, from, to string) ([]*models.Bet, error) {
	return r.find(ctx, bson.M{"drawDate.date": bson.M{"$gte": from, "$lte": to}})
}

// SumAmount totals every line on one number for one draw
func (r *BetRepository) SumAmount(ctx context.Context, draw models.DrawDate, game models.Game, number string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"drawDate.date": draw.Date, "drawDate.time": draw.Time}}},
		{{Key: "$unwind", Value: "$bets"}},
		{{Key: "$match", Value: bson.M{"bets.game": game, "bets.number": number}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "amount": bson.M{"$sum": "$bets.amount"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Amount float64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Amount, nil
}

// DeleteByUser removes every bet placed by the given email in one call
func (r *BetRepository) DeleteByUser(ctx context.Context, email string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user": email})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		r.publish(models.OpDelete, primitive.NilObjectID)
	}
	return res.DeletedCount, nil
}

func (r *BetRepository) find(ctx context.Context, filter bson.M) ([]*models.Bet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "drawDate.date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bets []*models.Bet
	if err := cursor.All(ctx, &bets); err != nil {
		return nil, err
	}
	if bets == nil {
		bets = []*models.Bet{}
	}
	return bets, nil
}
