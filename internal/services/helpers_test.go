package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var manila = time.FixedZone("PHT", 8*60*60)

func at(date string, hour, minute int) NowFunc {
	day, err := time.ParseInLocation(models.DateLayout, date, manila)
	if err != nil {
		panic(err)
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, manila)
	return func() time.Time { return t }
}

type fixture struct {
	hub        *notify.Hub
	users      *memory.UserRepository
	identities *memory.IdentityRepository
	bets       *memory.BetRepository
	results    *memory.ResultRepository
	loads      *memory.LoadControlRepository
	schedule   *DrawSchedule
	logger     *zap.Logger
}

func newFixture(now NowFunc) *fixture {
	hub := notify.NewHub(nil)
	return &fixture{
		hub:        hub,
		users:      memory.NewUserRepository(hub),
		identities: memory.NewIdentityRepository(),
		bets:       memory.NewBetRepository(hub),
		results:    memory.NewResultRepository(hub),
		loads:      memory.NewLoadControlRepository(hub),
		schedule:   NewDrawSchedule(manila, now),
		logger:     zap.NewNop(),
	}
}

func (f *fixture) betService(cumulative bool) *BetServiceImpl {
	return NewBetService(f.bets, f.loads, f.schedule, cumulative, f.logger)
}

func (f *fixture) userService() *UserServiceImpl {
	return NewUserService(f.users, f.identities, f.bets, 25, f.logger)
}

func (f *fixture) addStationUser(t *testing.T, email, station string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Station: &station}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addBet(t *testing.T, email, date string, tm models.DrawTime, lines ...models.BetLine) *models.Bet {
	t.Helper()
	b := &models.Bet{
		ReferenceNo: "123456",
		DrawDate:    models.DrawDate{Date: date, Time: tm},
		Bets:        lines,
		Total:       models.ComputeTotal(lines),
		User:        email,
	}
	require.NoError(t, f.bets.Create(context.Background(), b))
	return b
}

func lasto(number string, amount float64) models.BetLine {
	return models.BetLine{Game: models.GameLasto, Number: number, Amount: amount}
}
