package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadControlRepository_UpsertKeepsSingleID(t *testing.T) {
	ctx := context.Background()
	repo := NewLoadControlRepository(notify.NewHub(nil))

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	first, err := repo.Upsert(ctx, &models.LoadControl{Lasto: models.GameLoad{Amount: 100}})
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, &models.LoadControl{Lasto: models.GameLoad{Amount: 250}})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Lasto.Amount)
}

func TestResultRepository_UpsertKeepsUntouchedFields(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(notify.NewHub(nil))

	created, err := repo.Upsert(ctx, "2024-01-01", map[string]string{"lasto2pm": "12", "swertres2pm": "345"})
	require.NoError(t, err)

	updated, err := repo.Upsert(ctx, "2024-01-01", map[string]string{"lasto5pm": "77"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "12", updated.Lasto2PM)
	assert.Equal(t, "345", updated.Swertres2PM)
	assert.Equal(t, "77", updated.Lasto5PM)
}

func TestBetRepository_PublishesAndDeletesByUser(t *testing.T) {
	ctx := context.Background()
	hub := notify.NewHub(nil)
	repo := NewBetRepository(hub)

	sub := repo.Subscribe(ctx)
	defer sub.Close()

	line := models.BetLine{Game: models.GameLasto, Number: "12", Amount: 10}
	draw := models.DrawDate{Date: "2024-01-01", Time: models.Draw2PM}
	require.NoError(t, repo.Create(ctx, &models.Bet{DrawDate: draw, Bets: []models.BetLine{line}, User: "a@x.io"}))
	require.NoError(t, repo.Create(ctx, &models.Bet{DrawDate: draw, Bets: []models.BetLine{line, line}, User: "b@x.io"}))

	select {
	case ev := <-sub.C:
		assert.Equal(t, models.CollectionBets, ev.Collection)
	case <-time.After(time.Second):
		t.Fatal("expected insert event")
	}

	sum, err := repo.SumAmount(ctx, draw, models.GameLasto, "12")
	require.NoError(t, err)
	assert.Equal(t, 30.0, sum)

	n, err := repo.DeleteByUser(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.FindByDateRange(ctx, "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "b@x.io", left[0].User)
}

func TestBetRepository_InsertManyRejectsStoredIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewBetRepository(notify.NewHub(nil))
	kept := &models.Bet{User: "st1@shop.ph", DrawDate: models.DrawDate{Date: "2024-01-01", Time: models.Draw2PM}}
	gone := &models.Bet{User: "st1@shop.ph", DrawDate: models.DrawDate{Date: "2024-01-01", Time: models.Draw5PM}}
	require.NoError(t, repo.Create(ctx, kept))
	require.NoError(t, repo.Create(ctx, gone))

	_, err := repo.DeleteByUser(ctx, "st1@shop.ph")
	require.NoError(t, err)
	require.NoError(t, repo.InsertMany(ctx, []*models.Bet{kept}))

	assert.Error(t, repo.InsertMany(ctx, []*models.Bet{gone, kept}))
	bets, err := repo.FindByUser(ctx, "st1@shop.ph")
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, kept.ID, bets[0].ID)

	require.NoError(t, repo.InsertMany(ctx, []*models.Bet{gone}))
	bets, err = repo.FindByUser(ctx, "st1@shop.ph")
	require.NoError(t, err)
	assert.Len(t, bets, 2)
}
