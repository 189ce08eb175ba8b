package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReports(f *fixture) *ReportServiceImpl {
	return NewReportService(f.bets, f.users, f.hub, f.logger)
}

func seedStations(t *testing.T, f *fixture) {
	t.Helper()
	f.addStationUser(t, "a@shop.ph", "Station A")
	f.addStationUser(t, "b@shop.ph", "Station B")
	f.addBet(t, "a@shop.ph", "2024-01-01", models.Draw2PM, lasto("12", 10))
	f.addBet(t, "a@shop.ph", "2024-01-02", models.Draw5PM, lasto("12", 15), lasto("34", 5))
	f.addBet(t, "b@shop.ph", "2024-01-02", models.Draw9PM, models.BetLine{Game: models.GameSwertres, Number: "123", Amount: 7})
	f.addBet(t, "b@shop.ph", "2024-01-03", models.Draw2PM, lasto("12", 3))
	f.addBet(t, "a@shop.ph", "2024-01-04", models.Draw2PM, lasto("12", 1000))
}

func TestStationSummary_EachBetInExactlyOneStation(t *testing.T) {
	f := newFixture(at(today, 9, 0))
	seedStations(t, f)

	groups, err := newReports(f).StationSummary(context.Background(), "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Station A", groups[0].Station)
	assert.Len(t, groups[0].Bets, 2)
	assert.Equal(t, 30.0, groups[0].Total.Amount)

	assert.Equal(t, "Station B", groups[1].Station)
	assert.Len(t, groups[1].Bets, 2)
	assert.Equal(t, 10.0, groups[1].Total.Amount)

	seen := map[string]int{}
	for _, g := range groups {
		var sum float64
		for _, b := range g.Bets {
			seen[b.ID.Hex()]++
			sum += b.Total.Amount
		}
		assert.Equal(t, sum, g.Total.Amount)
	}
	assert.Len(t, seen, 4)
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
}

func TestStationSummary_UnknownStation(t *testing.T) {
	f := newFixture(at(today, 9, 0))
	f.addStationUser(t, "a@shop.ph", "Station 1")
	f.addBet(t, "gone@shop.ph", "2024-01-01", models.Draw2PM, lasto("12", 4))
	f.addBet(t, "a@shop.ph", "2024-01-01", models.Draw2PM, lasto("12", 1))

	groups, err := newReports(f).StationSummary(context.Background(), "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Station 1", groups[0].Station)
	assert.Equal(t, models.UnknownStation, groups[1].Station)
	assert.Equal(t, 4.0, groups[1].Total.Amount)

	_, err = newReports(f).StationSummary(context.Background(), "2024-01-02", "2024-01-01")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboard(t *testing.T) {
	f := newFixture(at(today, 9, 0))
	seedStations(t, f)
	f.addStationUser(t, "c@shop.ph", "Station C")

	d, err := newReports(f).Dashboard(context.Background(), "2024-01-02")
	require.NoError(t, err)

	assert.Equal(t, 27.0, d.Total.Amount)
	assert.Equal(t, 3, d.Total.Bets)
	assert.Equal(t, 20.0, d.ByTime[models.Draw5PM])
	assert.Equal(t, 7.0, d.ByTime[models.Draw9PM])
	assert.Equal(t, 0.0, d.ByTime[models.Draw2PM])
	assert.Equal(t, 20.0, d.ByGame[models.GameLasto])
	assert.Equal(t, 7.0, d.ByGame[models.GameSwertres])

	require.Len(t, d.Stations, 3)
	assert.Equal(t, models.StationTotal{Station: "Station A", Email: "a@shop.ph", Amount: 20, Bets: 2}, d.Stations[0])
	assert.Equal(t, 7.0, d.Stations[1].Amount)
	assert.Equal(t, 0.0, d.Stations[2].Amount)
}

func TestNumberTotals(t *testing.T) {
	f := newFixture(at(today, 9, 0))
	seedStations(t, f)
	f.addBet(t, "b@shop.ph", "2024-01-02", models.Draw2PM, lasto("12", 1))

	totals, err := newReports(f).NumberTotals(context.Background(), "2024-01-02", "")
	require.NoError(t, err)
	assert.Equal(t, []models.NumberTotal{
		{Game: models.GameLasto, Number: "12", Amount: 16, Bets: 2},
		{Game: models.GameLasto, Number: "34", Amount: 5, Bets: 1},
		{Game: models.GameSwertres, Number: "123", Amount: 7, Bets: 1},
	}, totals)

	filtered, err := newReports(f).NumberTotals(context.Background(), "2024-01-02", "3")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestExport_CSVSelectedStation(t *testing.T) {
	f := newFixture(at(today, 9, 0))
	seedStations(t, f)

	var buf bytes.Buffer
	require.NoError(t, newReports(f).Export(context.Background(), &buf, "Station A", "2024-01-01", "2024-01-03", "csv"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5, "header, three lines, total")
	for _, r := range records[1:4] {
		assert.Equal(t, "Station A", r[0])
	}
	assert.Equal(t, "30.00", records[4][6])

	assert.ErrorIs(t, newReports(f).Export(context.Background(), &buf, "", "2024-01-01", "2024-01-03", "pdf"), ErrValidation)
}
