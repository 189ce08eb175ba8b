package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameLoad caps wagers for one game. When Numbers is empty, Amount is the
// general load for every number. Otherwise Amount applies to the listed
// numbers and AllNumbersAmount to the rest.
type GameLoad struct {
	Numbers          []string `bson:"numbers" json:"numbers"`
	Amount           float64  `bson:"amount" json:"amount"`
	AllNumbersAmount float64  `bson:"allNumbersAmount" json:"allNumbersAmount"`
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// Contains reports whether date falls in the range. Open ends are unbounded.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// ControlNumbers is the cross-game override list.
type ControlNumbers struct {
	Numbers   []string   `bson:"numbers" json:"numbers"`
	Amount    float64    `bson:"amount" json:"amount"`
	DateRange *DateRange `bson:"dateRange,omitempty" json:"dateRange,omitempty"`
}

// LoadControl is the singleton document holding every wager cap.
type LoadControl struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Lasto          GameLoad           `bson:"lasto" json:"lasto"`
	Swertres       GameLoad           `bson:"swertres" json:"swertres"`
	Pick3          GameLoad           `bson:"pick3" json:"pick3"`
	FourD60        GameLoad           `bson:"fourD60" json:"fourD60"`
	ControlNumbers *ControlNumbers    `bson:"controlNumbers,omitempty" json:"controlNumbers,omitempty"`
	DateToday      string             `bson:"dateToday" json:"dateToday"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ForGame returns the load configured for g.
func (lc *LoadControl) ForGame(g Game) GameLoad {
	switch g {
	case GameLasto:
		return lc.Lasto
	case GameSwertres:
		return lc.Swertres
	case GamePick3:
		return lc.Pick3
	case Game4D60:
		return lc.FourD60
	}
	return GameLoad{}
}

// Cap source names used in rejection messages.
const (
	CapControl = "control"
	CapNumber  = "number"
	CapGeneral = "general"
)

// CapFor resolves the cap for a normalized number on a draw date. The
// control list wins over the game's own list, which wins over the general
// amount. A zero cap means the rule is not configured and the next one is
// tried; ok is false when no rule applies.
func (lc *LoadControl) CapFor(date string, g Game, number string) (limit float64, source string, ok bool) {
	if cn := lc.ControlNumbers; cn != nil && cn.Amount > 0 {
		if cn.DateRange == nil || cn.DateRange.Contains(date) {
			if containsNumber(g, cn.Numbers, number) {
				return cn.Amount, CapControl, true
			}
		}
	}

	load := lc.ForGame(g)
	if len(load.Numbers) == 0 {
		if load.Amount > 0 {
			return load.Amount, CapGeneral, true
		}
		return 0, "", false
	}
	if containsNumber(g, load.Numbers, number) {
		if load.Amount > 0 {
			return load.Amount, CapNumber, true
		}
	}
	if load.AllNumbersAmount > 0 {
		return load.AllNumbersAmount, CapGeneral, true
	}
	return 0, "", false
}

func containsNumber(g Game, list []string, number string) bool {
	for _, n := range list {
		if norm, err := g.NormalizeNumber(n); err == nil && norm == number {
			return true
		}
	}
	return false
}

// NumberList accepts either a JSON array or a comma/space separated string.
type NumberList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *NumberList) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = SplitNumbers(text)
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, strings.TrimSpace(s))
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return err
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}

// SplitNumbers parses "12, 34 56" style input.
func SplitNumbers(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// GameLoadInput is the admin form for one game.
type GameLoadInput struct {
	Numbers          NumberList `json:"numbers"`
	Amount           float64    `json:"amount" binding:"gte=0"`
	AllNumbersAmount float64    `json:"allNumbersAmount" binding:"gte=0"`
}

// ControlNumbersInput is the admin form for the override list.
type ControlNumbersInput struct {
	Numbers   NumberList `json:"numbers"`
	Amount    float64    `json:"amount" binding:"gte=0"`
	DateRange *DateRange `json:"dateRange"`
}

// LoadControlInput is the body of a load-control upsert.
type LoadControlInput struct {
	Lasto          GameLoadInput        `json:"lasto"`
	Swertres       GameLoadInput        `json:"swertres"`
	Pick3          GameLoadInput        `json:"pick3"`
	FourD60        GameLoadInput        `json:"fourD60"`
	ControlNumbers *ControlNumbersInput `json:"controlNumbers"`
}

// ForGame returns the form section for g.
func (in *LoadControlInput) ForGame(g Game) GameLoadInput {
	switch g {
	case GameLasto:
		return in.Lasto
	case GameSwertres:
		return in.Swertres
	case GamePick3:
		return in.Pick3
	case Game4D60:
		return in.FourD60
	}
	return GameLoadInput{}
}

// SetGame stores load for g.
func (lc *LoadControl) SetGame(g Game, load GameLoad) {
	switch g {
	case GameLasto:
		lc.Lasto = load
	case GameSwertres:
		lc.Swertres = load
	case GamePick3:
		lc.Pick3 = load
	case Game4D60:
		lc.FourD60 = load
	}
}

// FormatAmount renders a cap for messages without a trailing ".00".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
