package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// Subscriber exposes change notifications for a repository's collection.
type Subscriber interface {
	Subscribe(ctx context.Context) *notify.Subscription
}

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	Subscriber
	// Create stores a profile. A preset ID is kept so the profile shares the
	// identity's ID.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// IdentityRepository defines the interface for credential records
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// BetRepository defines the interface for wager slip operations
type BetRepository interface {
	Subscriber
	Create(ctx context.Context, bet *models.Bet) error
	// InsertMany stores bets keeping their IDs. Used to restore a snapshot.
	InsertMany(ctx context.Context, bets []*models.Bet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error)
	FindByUser(ctx context.Context, email string) ([]*models.Bet, error)
	FindByUserAndDate(ctx context.Context, email, date string) ([]*models.Bet, error)
	// FindByDateRange returns bets drawn between from and to inclusive.
	FindByDateRange(ctx context.Context, from, to string) ([]*models.Bet, error)
	// SumAmount totals what every station has wagered on one number of one draw.
	SumAmount(ctx context.Context, draw models.DrawDate, game models.Game, number string) (float64, error)
	DeleteByUser(ctx context.Context, email string) (int64, error)
}

// ResultRepository defines the interface for draw result operations
type ResultRepository interface {
	Subscriber
	FindByDate(ctx context.Context, date string) (*models.Result, error)
	// Upsert creates the date's document or overwrites only the given fields.
	Upsert(ctx context.Context, date string, fields map[string]string) (*models.Result, error)
	FindLatest(ctx context.Context, limit int) ([]*models.Result, error)
}

// LoadControlRepository defines the interface for the load-control singleton
type LoadControlRepository interface {
	Subscriber
	Get(ctx context.Context) (*models.LoadControl, error)
	// Upsert inserts the singleton when absent and otherwise updates it in place.
	Upsert(ctx context.Context, lc *models.LoadControl) (*models.LoadControl, error)
}
