package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error categories surfaced to handlers.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrLoadExceeded = errors.New("load limit exceeded")
	ErrDrawClosed   = errors.New("draw time is closed")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NowFunc returns the current time. Services take one so tests can pin the clock.
type NowFunc func() time.Time

// AuthService defines the interface for sign-in and self-signup
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// UserService defines the interface for admin account management
type UserService interface {
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, actorID, id primitive.ObjectID) error
	Stations() []string
}

// BetService defines the interface for station bet submission
type BetService interface {
	GenerateReferenceNo() (string, error)
	AvailableDrawTimes(date string) ([]models.DrawSlot, error)
	SubmitBet(ctx context.Context, email string, req *models.SubmitBetRequest) (*models.Bet, error)
	ListMyBets(ctx context.Context, email, date string) (*models.BetList, error)
	SlipQRCode(ctx context.Context, email string, id primitive.ObjectID, size int) ([]byte, error)
}

// LoadControlService defines the interface for wager caps
type LoadControlService interface {
	Get(ctx context.Context) (*models.LoadControl, error)
	Upsert(ctx context.Context, in *models.LoadControlInput) (*models.LoadControl, error)
}

// ResultService defines the interface for draw results
type ResultService interface {
	GetResult(ctx context.Context, date string) (*models.Result, error)
	UpsertResult(ctx context.Context, date string, in *models.ResultInput) (*models.Result, error)
	LatestResults(ctx context.Context, limit int) ([]*models.Result, error)
}

// ReportService defines the interface for admin aggregation views
type ReportService interface {
	Dashboard(ctx context.Context, date string) (*models.Dashboard, error)
	StationSummary(ctx context.Context, from, to string) ([]*models.StationSummary, error)
	StationBets(ctx context.Context, station, from, to string) (*models.StationSummary, error)
	NumberTotals(ctx context.Context, date, search string) ([]models.NumberTotal, error)
	Export(ctx context.Context, w io.Writer, station, from, to, format string) error
	// Subscribe reports changes to the collections the views are built from.
	Subscribe(ctx context.Context) *notify.Subscription
}
