package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.BetRepository = (*BetRepository)(nil)

// BetRepository keeps bet slips in insertion order.
type BetRepository struct {
	events
	mu   sync.RWMutex
	bets []*models.Bet
}

// NewBetRepository creates an empty repository.
func NewBetRepository(notifier notify.Notifier) *BetRepository {
	return &BetRepository{events: events{name: models.CollectionBets, notifier: notifier}}
}

// Create stores a new bet slip
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	bet.ID = primitive.NewObjectID()
	bet.CreatedAt = time.Now()
	r.mu.Lock()
	r.bets = append(r.bets, copyBet(bet))
	r.mu.Unlock()

	r.publish(models.OpInsert, bet.ID)
	return nil
}

// InsertMany re-inserts bets with their existing IDs. Like a unique _id
// index, it rejects the whole batch when any ID is already stored.
func (r *BetRepository) InsertMany(ctx context.Context, bets []*models.Bet) error {
	r.mu.Lock()
	stored := make(map[primitive.ObjectID]bool, len(r.bets))
	for _, b := range r.bets {
		stored[b.ID] = true
	}
	for _, b := range bets {
		if stored[b.ID] {
			r.mu.Unlock()
			return fmt.Errorf("duplicate bet id %s", b.ID.Hex())
		}
		stored[b.ID] = true
	}
	for _, b := range bets {
		r.bets = append(r.bets, copyBet(b))
	}
	r.mu.Unlock()

	for _, b := range bets {
		r.publish(models.OpInsert, b.ID)
	}
	return nil
}

// FindByID finds a bet by ID
func (r *BetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bets {
		if b.ID == id {
			return copyBet(b), nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FindByUser finds all bets placed by a user
func (r *BetRepository) FindByUser(ctx context.Context, email string) ([]*models.Bet, error) {
	return r.filter(func(b *models.Bet) bool { return b.User == email }), nil
}

// FindByUserAndDate finds a user's bets for one draw date
func (r *BetRepository) FindByUserAndDate(ctx context.Context, email, date string) ([]*models.Bet, error) {
	return r.filter(func(b *models.Bet) bool {
		return b.User == email && b.DrawDate.Date == date
	}), nil
}

// FindByDateRange finds bets with draw dates between from and to, inclusive
func (r *BetRepository) FindByDateRange(ctx context.Context, from, to string) ([]*models.Bet, error) {
	return r.filter(func(b *models.Bet) bool {
		return b.DrawDate.Date >= from && b.DrawDate.Date <= to
	}), nil
}

// SumAmount totals the amount staked on a number for one draw
func (r *BetRepository) SumAmount(ctx context.Context, draw models.DrawDate, game models.Game, number string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum float64
	for _, b := range r.bets {
		if b.DrawDate != draw {
			continue
		}
		for _, l := range b.Bets {
			if l.Game == game && l.Number == number {
				sum += l.Amount
			}
		}
	}
	return sum, nil
}

// DeleteByUser removes all bets placed by a user
func (r *BetRepository) DeleteByUser(ctx context.Context, email string) (int64, error) {
	r.mu.Lock()
	kept := r.bets[:0]
	var deleted int64
	for _, b := range r.bets {
		if b.User == email {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	r.bets = kept
	r.mu.Unlock()

	if deleted > 0 {
		r.publish(models.OpDelete, primitive.NilObjectID)
	}
	return deleted, nil
}

func (r *BetRepository) filter(keep func(*models.Bet) bool) []*models.Bet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Bet{}
	for _, b := range r.bets {
		if keep(b) {
			out = append(out, copyBet(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DrawDate.Date < out[j].DrawDate.Date })
	return out
}
