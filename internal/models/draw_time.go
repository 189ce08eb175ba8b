package models

import (
	"fmt"
	"strings"
	"time"
)

// DrawTime is one of the three daily draw slots.
type DrawTime string

const (
	Draw2PM DrawTime = "2pm"
	Draw5PM DrawTime = "5pm"
	Draw9PM DrawTime = "9pm"
)

// DrawTimes lists the slots in chronological order.
var DrawTimes = []DrawTime{Draw2PM, Draw5PM, Draw9PM}

// ParseDrawTime maps a slot code onto its variant.
func ParseDrawTime(code string) (DrawTime, error) {
	d := DrawTime(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), " ", "")))
	if !d.Valid() {
		return "", fmt.Errorf("unknown draw time %q", code)
	}
	return d, nil
}

// Valid reports whether d is a known slot.
func (d DrawTime) Valid() bool {
	switch d {
	case Draw2PM, Draw5PM, Draw9PM:
		return true
	}
	return false
}

// Label returns the display form ("2 PM").
func (d DrawTime) Label() string {
	if !d.Valid() {
		return string(d)
	}
	return strings.ToUpper(strings.TrimSuffix(string(d), "pm")) + " PM"
}

// Cutoff is the wall-clock time after which the slot no longer takes bets.
func (d DrawTime) Cutoff() (hour, minute int) {
	switch d {
	case Draw2PM:
		return 13, 45
	case Draw5PM:
		return 16, 45
	case Draw9PM:
		return 20, 45
	}
	return 0, 0
}

// CutoffOn returns the cutoff instant on the calendar day of day, in day's location.
func (d DrawTime) CutoffOn(day time.Time) time.Time {
	h, m := d.Cutoff()
	y, mo, dd := day.Date()
	return time.Date(y, mo, dd, h, m, 0, 0, day.Location())
}

// UnmarshalText rejects unknown slots at decode time.
func (d *DrawTime) UnmarshalText(text []byte) error {
	parsed, err := ParseDrawTime(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d DrawTime) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

// DrawSlot describes whether a slot still accepts bets for a given date.
type DrawSlot struct {
	Time   DrawTime `json:"time"`
	Label  string   `json:"label"`
	Cutoff string   `json:"cutoff"`
	Open   bool     `json:"open"`
}
