package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar date format used for draw dates and results.
const DateLayout = "2006-01-02"

// DrawDate identifies a single draw.
type DrawDate struct {
	Date string   `bson:"date" json:"date" binding:"required,isodate"`
	Time DrawTime `bson:"time" json:"time" binding:"required"`
}

// BetLine is one wager on a slip.
type BetLine struct {
	Game   Game    `bson:"game" json:"game" binding:"required"`
	Number string  `bson:"number" json:"number" binding:"required"`
	Amount float64 `bson:"amount" json:"amount" binding:"required,gt=0"`
}

// BetTotal is the denormalized summary of a slip.
type BetTotal struct {
	Amount float64 `bson:"amount" json:"amount"`
	Bets   int     `bson:"bets" json:"bets"`
}

// Bet represents a submitted wager slip. Bets are immutable once stored.
type Bet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ReferenceNo string             `bson:"referenceNo" json:"referenceNo"`
	DrawDate    DrawDate           `bson:"drawDate" json:"drawDate"`
	Bets        []BetLine          `bson:"bets" json:"bets"`
	Total       BetTotal           `bson:"total" json:"total"`
	User        string             `bson:"user" json:"user"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ComputeTotal sums the lines of a slip.
func ComputeTotal(lines []BetLine) BetTotal {
	total := BetTotal{Bets: len(lines)}
	for _, l := range lines {
		total.Amount += l.Amount
	}
	return total
}

// SubmitBetRequest is the body of a slip submission. Totals are always
// recomputed from the lines.
type SubmitBetRequest struct {
	ReferenceNo string    `json:"referenceNo" binding:"omitempty,refno"`
	DrawDate    DrawDate  `json:"drawDate" binding:"required"`
	Bets        []BetLine `json:"bets" binding:"required,min=1,dive"`
}

// BetList is a set of slips together with their combined total.
type BetList struct {
	Bets  []*Bet   `json:"bets"`
	Total BetTotal `json:"total"`
}

// NewBetList builds a BetList, counting every line across the slips.
func NewBetList(bets []*Bet) *BetList {
	list := &BetList{Bets: bets}
	if list.Bets == nil {
		list.Bets = []*Bet{}
	}
	for _, b := range bets {
		list.Total.Amount += b.Total.Amount
		list.Total.Bets += b.Total.Bets
	}
	return list
}
