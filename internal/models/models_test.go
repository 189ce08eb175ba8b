package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_NormalizeNumber(t *testing.T) {
	cases := []struct {
		game    Game
		in      string
		want    string
		wantErr bool
	}{
		{GameLasto, "07", "07", false},
		{GameLasto, "7", "", true},
		{GameSwertres, "123", "123", false},
		{GameSwertres, "12a", "", true},
		{GamePick3, "12-34-56", "12-34-56", false},
		{GamePick3, "123456", "12-34-56", false},
		{GamePick3, "12345", "", true},
		{Game4D60, "01 22 45 60", "01-22-45-60", false},
		{Game4D60, "00-22-45-60", "", true},
		{Game4D60, "01-22-45-61", "", true},
	}
	for _, tc := range cases {
		got, err := tc.game.NormalizeNumber(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "%s %q", tc.game, tc.in)
			continue
		}
		require.NoError(t, err, "%s %q", tc.game, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestGameAndDrawTime_RejectUnknownOnDecode(t *testing.T) {
	var line BetLine
	require.NoError(t, json.Unmarshal([]byte(`{"game":"LASTO","number":"12","amount":5}`), &line))
	assert.Equal(t, GameLasto, line.Game)

	assert.Error(t, json.Unmarshal([]byte(`{"game":"keno","number":"12","amount":5}`), &line))

	var d DrawDate
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-01","time":"5 PM"}`), &d))
	assert.Equal(t, Draw5PM, d.Time)
	assert.Error(t, json.Unmarshal([]byte(`{"date":"2024-01-01","time":"3pm"}`), &d))
}

func TestDrawTime_Cutoff(t *testing.T) {
	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC), Draw2PM.CutoffOn(day))
	assert.Equal(t, time.Date(2024, 1, 1, 16, 45, 0, 0, time.UTC), Draw5PM.CutoffOn(day))
	assert.Equal(t, time.Date(2024, 1, 1, 20, 45, 0, 0, time.UTC), Draw9PM.CutoffOn(day))
	assert.Equal(t, "9 PM", Draw9PM.Label())
}

func TestLoadControl_CapFor(t *testing.T) {
	lc := &LoadControl{
		Lasto:    GameLoad{Amount: 100},
		Swertres: GameLoad{Numbers: []string{"777"}, Amount: 10, AllNumbersAmount: 50},
		ControlNumbers: &ControlNumbers{
			Numbers: []string{"12", "777"},
			Amount:  5,
		},
	}

	limit, src, ok := lc.CapFor("2024-01-01", GameLasto, "12")
	assert.True(t, ok)
	assert.Equal(t, 5.0, limit)
	assert.Equal(t, CapControl, src)

	limit, src, _ = lc.CapFor("2024-01-01", GameLasto, "13")
	assert.Equal(t, 100.0, limit)
	assert.Equal(t, CapGeneral, src)

	limit, src, _ = lc.CapFor("2024-01-01", GameSwertres, "777")
	assert.Equal(t, 5.0, limit, "control list wins over the game list")
	assert.Equal(t, CapControl, src)

	lc.ControlNumbers = nil
	limit, src, _ = lc.CapFor("2024-01-01", GameSwertres, "777")
	assert.Equal(t, 10.0, limit)
	assert.Equal(t, CapNumber, src)

	limit, _, _ = lc.CapFor("2024-01-01", GameSwertres, "778")
	assert.Equal(t, 50.0, limit)

	_, _, ok = lc.CapFor("2024-01-01", GamePick3, "12-34-56")
	assert.False(t, ok, "unconfigured game has no cap")
}

func TestComputeTotal(t *testing.T) {
	lines := []BetLine{{Amount: 1.5}, {Amount: 2}, {Amount: 10}}
	assert.Equal(t, BetTotal{Amount: 13.5, Bets: 3}, ComputeTotal(lines))
	assert.Equal(t, BetTotal{}, ComputeTotal(nil))
}

func TestResultInput_FieldsSkipBlank(t *testing.T) {
	in := ResultInput{Lasto2PM: "12", Lasto5PM: "  ", FourD60: "01-02-03-04"}
	assert.Equal(t, map[string]string{"lasto2pm": "12", "fourD60": "01-02-03-04"}, in.Fields())

	r := &Result{Lasto5PM: "99"}
	r.Apply(in.Fields())
	assert.Equal(t, "12", r.Lasto2PM)
	assert.Equal(t, "99", r.Lasto5PM)
}
