package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result holds the winning numbers published for one calendar date.
type Result struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Date        string             `bson:"date" json:"date"`
	Lasto2PM    string             `bson:"lasto2pm" json:"lasto2pm"`
	Lasto5PM    string             `bson:"lasto5pm" json:"lasto5pm"`
	Lasto9PM    string             `bson:"lasto9pm" json:"lasto9pm"`
	Swertres2PM string             `bson:"swertres2pm" json:"swertres2pm"`
	Swertres5PM string             `bson:"swertres5pm" json:"swertres5pm"`
	Swertres9PM string             `bson:"swertres9pm" json:"swertres9pm"`
	PickThree   string             `bson:"pickThree" json:"pickThree"`
	FourD60     string             `bson:"fourD60" json:"fourD60"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

// ResultInput is the admin form for a date's results. Blank fields leave the
// stored value untouched.
type ResultInput struct {
	Lasto2PM    string `json:"lasto2pm"`
	Lasto5PM    string `json:"lasto5pm"`
	Lasto9PM    string `json:"lasto9pm"`
	Swertres2PM string `json:"swertres2pm"`
	Swertres5PM string `json:"swertres5pm"`
	Swertres9PM string `json:"swertres9pm"`
	PickThree   string `json:"pickThree"`
	FourD60     string `json:"fourD60"`
}

// Fields returns the non-blank inputs keyed by document field name.
func (in ResultInput) Fields() map[string]string {
	all := map[string]string{
		"lasto2pm":    in.Lasto2PM,
		"lasto5pm":    in.Lasto5PM,
		"lasto9pm":    in.Lasto9PM,
		"swertres2pm": in.Swertres2PM,
		"swertres5pm": in.Swertres5PM,
		"swertres9pm": in.Swertres9PM,
		"pickThree":   in.PickThree,
		"fourD60":     in.FourD60,
	}
	fields := make(map[string]string, len(all))
	for k, v := range all {
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	return fields
}

// Apply copies fields produced by ResultInput.Fields onto r.
func (r *Result) Apply(fields map[string]string) {
	for k, v := range fields {
		switch k {
		case "lasto2pm":
			r.Lasto2PM = v
		case "lasto5pm":
			r.Lasto5PM = v
		case "lasto9pm":
			r.Lasto9PM = v
		case "swertres2pm":
			r.Swertres2PM = v
		case "swertres5pm":
			r.Swertres5PM = v
		case "swertres9pm":
			r.Swertres9PM = v
		case "pickThree":
			r.PickThree = v
		case "fourD60":
			r.FourD60 = v
		}
	}
}
