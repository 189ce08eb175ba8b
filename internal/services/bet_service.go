package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"github.com/ArowuTest/lasto-station-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BetServiceImpl implements BetService
type BetServiceImpl struct {
	bets       repositories.BetRepository
	loads      repositories.LoadControlRepository
	schedule   *DrawSchedule
	cumulative bool
	logger     *zap.Logger
	qrEncoder  utils.QRCodeEncoder
}

var _ BetService = (*BetServiceImpl)(nil)

// NewBetService creates a new BetService. With cumulative set, caps also
// count what other slips already wagered on the same number and draw.
func NewBetService(bets repositories.BetRepository, loads repositories.LoadControlRepository, schedule *DrawSchedule, cumulative bool, logger *zap.Logger) *BetServiceImpl {
	return &BetServiceImpl{
		bets:       bets,
		loads:      loads,
		schedule:   schedule,
		cumulative: cumulative,
		logger:     logger,
	}
}

// GenerateReferenceNo returns a fresh slip reference number
func (s *BetServiceImpl) GenerateReferenceNo() (string, error) {
	return utils.GenerateReferenceNo()
}

// AvailableDrawTimes lists the slots for date with their open flags
func (s *BetServiceImpl) AvailableDrawTimes(date string) ([]models.DrawSlot, error) {
	if date == "" {
		date = s.schedule.Today()
	}
	return s.schedule.Availability(date)
}

// ValidateLine checks one wager and returns it with its number normalized
func ValidateLine(line models.BetLine) (models.BetLine, error) {
	if !line.Game.Valid() {
		return line, validationf("unknown game %q", line.Game)
	}
	if line.Amount <= 0 {
		return line, validationf("amount for %s %s must be greater than zero", line.Game.Label(), line.Number)
	}
	number, err := line.Game.NormalizeNumber(line.Number)
	if err != nil {
		return line, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	line.Number = number
	return line, nil
}

// CheckLoad rejects amount when it exceeds the cap that applies to number
// on the draw date. A nil LoadControl imposes no cap.
func CheckLoad(lc *models.LoadControl, date string, game models.Game, number string, amount float64) error {
	if lc == nil {
		return nil
	}
	limit, source, ok := lc.CapFor(date, game, number)
	if !ok || amount <= limit {
		return nil
	}
	return fmt.Errorf("%w: %s number %s is limited to %s (%s load), requested %s",
		ErrLoadExceeded, game.Label(), number, models.FormatAmount(limit), source, models.FormatAmount(amount))
}

type lineKey struct {
	game   models.Game
	number string
}

// SubmitBet validates a slip and stores it for the station user email
func (s *BetServiceImpl) SubmitBet(ctx context.Context, email string, req *models.SubmitBetRequest) (*models.Bet, error) {
	ref := req.ReferenceNo
	if ref == "" {
		generated, err := utils.GenerateReferenceNo()
		if err != nil {
			return nil, err
		}
		ref = generated
	} else if !utils.IsReferenceNo(ref) {
		return nil, validationf("reference number must be %d digits", utils.ReferenceDigits)
	}

	open, err := s.schedule.IsOpen(req.DrawDate.Date, req.DrawDate.Time)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: %s draw on %s no longer accepts bets", ErrDrawClosed, req.DrawDate.Time.Label(), req.DrawDate.Date)
	}

	if len(req.Bets) == 0 {
		return nil, validationf("a slip needs at least one bet")
	}
	lines := make([]models.BetLine, 0, len(req.Bets))
	perNumber := make(map[lineKey]float64)
	var order []lineKey
	for _, raw := range req.Bets {
		line, err := ValidateLine(raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		k := lineKey{line.Game, line.Number}
		if _, seen := perNumber[k]; !seen {
			order = append(order, k)
		}
		perNumber[k] += line.Amount
	}

	lc, err := s.loads.Get(ctx)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("load control: %w", err)
	}
	for _, k := range order {
		amount := perNumber[k]
		if s.cumulative && lc != nil {
			placed, err := s.bets.SumAmount(ctx, req.DrawDate, k.game, k.number)
			if err != nil {
				return nil, fmt.Errorf("sum placed bets: %w", err)
			}
			amount += placed
		}
		if err := CheckLoad(lc, req.DrawDate.Date, k.game, k.number, amount); err != nil {
			s.logger.Info("bet rejected by load control",
				zap.String("user", email),
				zap.String("game", string(k.game)),
				zap.String("number", k.number),
				zap.Float64("amount", amount))
			return nil, err
		}
	}

	bet := &models.Bet{
		ReferenceNo: ref,
		DrawDate:    req.DrawDate,
		Bets:        lines,
		Total:       models.ComputeTotal(lines),
		User:        email,
	}
	if err := s.bets.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("save bet: %w", err)
	}
	s.logger.Info("bet submitted",
		zap.String("user", email),
		zap.String("referenceNo", bet.ReferenceNo),
		zap.String("date", bet.DrawDate.Date),
		zap.String("time", string(bet.DrawDate.Time)),
		zap.Float64("total", bet.Total.Amount))
	return bet, nil
}

// ListMyBets returns the user's slips for a date
func (s *BetServiceImpl) ListMyBets(ctx context.Context, email, date string) (*models.BetList, error) {
	if date == "" {
		date = s.schedule.Today()
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	bets, err := s.bets.FindByUserAndDate(ctx, email, date)
	if err != nil {
		return nil, err
	}
	return models.NewBetList(bets), nil
}

// SlipQRCode renders a PNG QR code for one of the user's slips
func (s *BetServiceImpl) SlipQRCode(ctx context.Context, email string, id primitive.ObjectID, size int) ([]byte, error) {
	bet, err := s.bets.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && bet.User != email) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("REF:%s|DATE:%s|TIME:%s|TOTAL:%s",
		bet.ReferenceNo, bet.DrawDate.Date, bet.DrawDate.Time, models.FormatAmount(bet.Total.Amount))
	return utils.EncodeQRCode(content, size, s.qrEncoder)
}
