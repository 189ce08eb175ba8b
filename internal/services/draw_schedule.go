package services

import (
	"fmt"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
)

// DrawSchedule decides which draw slots still take bets. A slot is closed
// for today once the local clock reaches its cutoff; earlier dates are
// closed and later dates are open.
type DrawSchedule struct {
	loc *time.Location
	now NowFunc
}

// NewDrawSchedule creates a schedule in the given timezone.
func NewDrawSchedule(loc *time.Location, now NowFunc) *DrawSchedule {
	if now == nil {
		now = time.Now
	}
	return &DrawSchedule{loc: loc, now: now}
}

// Today returns the current calendar date in the draw timezone.
func (s *DrawSchedule) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// Availability lists every slot for date with its open flag.
func (s *DrawSchedule) Availability(date string) ([]models.DrawSlot, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	slots := make([]models.DrawSlot, 0, len(models.DrawTimes))
	for _, t := range models.DrawTimes {
		h, m := t.Cutoff()
		slots = append(slots, models.DrawSlot{
			Time:   t,
			Label:  t.Label(),
			Cutoff: fmt.Sprintf("%02d:%02d", h, m),
			Open:   s.open(date, t),
		})
	}
	return slots, nil
}

// IsOpen reports whether the slot still takes bets.
func (s *DrawSchedule) IsOpen(date string, t models.DrawTime) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	if !t.Valid() {
		return false, validationf("unknown draw time %q", t)
	}
	return s.open(date, t), nil
}

func (s *DrawSchedule) open(date string, t models.DrawTime) bool {
	now := s.now().In(s.loc)
	today := now.Format(models.DateLayout)
	switch {
	case date < today:
		return false
	case date > today:
		return true
	}
	return now.Before(t.CutoffOn(now))
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return validationf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}

func validateRange(from, to string) error {
	if err := validateDate(from); err != nil {
		return err
	}
	if err := validateDate(to); err != nil {
		return err
	}
	if from > to {
		return validationf("start date %s is after end date %s", from, to)
	}
	return nil
}
