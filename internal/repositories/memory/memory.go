// Package memory implements the repository interfaces in process memory. It
// backs the "memory" storage driver and the service tests.
package memory

import (
	"context"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

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

func copyUser(u *models.User) *models.User {
	c := *u
	if u.Station != nil {
		s := *u.Station
		c.Station = &s
	}
	return &c
}

func copyBet(b *models.Bet) *models.Bet {
	c := *b
	c.Bets = append([]models.BetLine(nil), b.Bets...)
	return &c
}

func copyLoadControl(lc *models.LoadControl) *models.LoadControl {
	c := *lc
	for _, g := range models.Games {
		load := lc.ForGame(g)
		load.Numbers = append([]string(nil), load.Numbers...)
		c.SetGame(g, load)
	}
	if lc.ControlNumbers != nil {
		cn := *lc.ControlNumbers
		cn.Numbers = append([]string(nil), cn.Numbers...)
		if cn.DateRange != nil {
			dr := *cn.DateRange
			cn.DateRange = &dr
		}
		c.ControlNumbers = &cn
	}
	return &c
}
