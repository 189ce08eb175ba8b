package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.uber.org/zap"
)

const maxLatestResults = 31

// ResultServiceImpl implements ResultService
type ResultServiceImpl struct {
	repo   repositories.ResultRepository
	logger *zap.Logger
}

var _ ResultService = (*ResultServiceImpl)(nil)

// NewResultService creates a new ResultService
func NewResultService(repo repositories.ResultRepository, logger *zap.Logger) *ResultServiceImpl {
	return &ResultServiceImpl{repo: repo, logger: logger}
}

// GetResult returns the results for a date
func (s *ResultServiceImpl) GetResult(ctx context.Context, date string) (*models.Result, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	res, err := s.repo.FindByDate(ctx, date)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return res, err
}

// UpsertResult creates the date's results or fills in the non-blank fields
func (s *ResultServiceImpl) UpsertResult(ctx context.Context, date string, in *models.ResultInput) (*models.Result, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	fields := in.Fields()
	if err := validateResultFields(fields); err != nil {
		return nil, err
	}
	res, err := s.repo.Upsert(ctx, date, fields)
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	s.logger.Info("result saved", zap.String("date", date), zap.Int("fields", len(fields)))
	return res, nil
}

// LatestResults returns up to limit recent dates, newest first
func (s *ResultServiceImpl) LatestResults(ctx context.Context, limit int) ([]*models.Result, error) {
	if limit <= 0 || limit > maxLatestResults {
		limit = maxLatestResults
	}
	return s.repo.FindLatest(ctx, limit)
}

var resultGames = map[string]models.Game{
	"lasto2pm":    models.GameLasto,
	"lasto5pm":    models.GameLasto,
	"lasto9pm":    models.GameLasto,
	"swertres2pm": models.GameSwertres,
	"swertres5pm": models.GameSwertres,
	"swertres9pm": models.GameSwertres,
	"pickThree":   models.GamePick3,
	"fourD60":     models.Game4D60,
}

func validateResultFields(fields map[string]string) error {
	for k, v := range fields {
		g, ok := resultGames[k]
		if !ok {
			continue
		}
		norm, err := g.NormalizeNumber(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrValidation, k, err)
		}
		fields[k] = norm
	}
	return nil
}
