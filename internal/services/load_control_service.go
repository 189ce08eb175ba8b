package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.uber.org/zap"
)

// LoadControlServiceImpl implements LoadControlService
type LoadControlServiceImpl struct {
	repo     repositories.LoadControlRepository
	schedule *DrawSchedule
	logger   *zap.Logger
}

var _ LoadControlService = (*LoadControlServiceImpl)(nil)

// NewLoadControlService creates a new LoadControlService
func NewLoadControlService(repo repositories.LoadControlRepository, schedule *DrawSchedule, logger *zap.Logger) *LoadControlServiceImpl {
	return &LoadControlServiceImpl{repo: repo, schedule: schedule, logger: logger}
}

// Get returns the singleton, or ErrNotFound before the first save
func (s *LoadControlServiceImpl) Get(ctx context.Context) (*models.LoadControl, error) {
	lc, err := s.repo.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return lc, err
}

// Upsert normalizes the form and saves it over the singleton
func (s *LoadControlServiceImpl) Upsert(ctx context.Context, in *models.LoadControlInput) (*models.LoadControl, error) {
	lc := &models.LoadControl{DateToday: s.schedule.Today()}

	for _, g := range models.Games {
		form := in.ForGame(g)
		if form.Amount < 0 || form.AllNumbersAmount < 0 {
			return nil, validationf("%s amounts cannot be negative", g.Label())
		}
		numbers, err := normalizeNumbers(g, form.Numbers)
		if err != nil {
			return nil, err
		}
		lc.SetGame(g, models.GameLoad{
			Numbers:          numbers,
			Amount:           form.Amount,
			AllNumbersAmount: form.AllNumbersAmount,
		})
	}

	if cn := in.ControlNumbers; cn != nil && len(cn.Numbers) > 0 {
		if cn.Amount < 0 {
			return nil, validationf("control amount cannot be negative")
		}
		control := &models.ControlNumbers{Amount: cn.Amount}
		for _, raw := range cn.Numbers {
			n, err := normalizeControlNumber(raw)
			if err != nil {
				return nil, err
			}
			control.Numbers = append(control.Numbers, n)
		}
		if dr := cn.DateRange; dr != nil && (dr.Start != "" || dr.End != "") {
			for _, d := range []string{dr.Start, dr.End} {
				if d != "" {
					if err := validateDate(d); err != nil {
						return nil, err
					}
				}
			}
			if dr.Start != "" && dr.End != "" && dr.Start > dr.End {
				return nil, validationf("control date range starts after it ends")
			}
			r := *dr
			control.DateRange = &r
		}
		lc.ControlNumbers = control
	}

	saved, err := s.repo.Upsert(ctx, lc)
	if err != nil {
		return nil, fmt.Errorf("save load control: %w", err)
	}
	s.logger.Info("load control saved", zap.String("id", saved.ID.Hex()))
	return saved, nil
}

func normalizeNumbers(g models.Game, raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		n, err := g.NormalizeNumber(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

// normalizeControlNumber left-pads short entries to the lasto width ("5"
// becomes "05") and requires the result to be a valid number for at least
// one game, so every stored control number can match a wager.
func normalizeControlNumber(raw string) (string, error) {
	n := strings.TrimSpace(raw)
	if width := models.GameLasto.Digits(); n != "" && len(n) < width && isDigits(n) {
		n = strings.Repeat("0", width-len(n)) + n
	}
	for _, g := range models.Games {
		if _, err := g.NormalizeNumber(n); err == nil {
			return n, nil
		}
	}
	return "", validationf("control number %q does not match any game's number format", raw)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
