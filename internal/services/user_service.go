package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"github.com/ArowuTest/lasto-station-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceImpl implements UserService. Accounts span two stores, the
// identity collection and the user profiles, so writes that touch both are
// undone step by step on failure.
type UserServiceImpl struct {
	users      repositories.UserRepository
	identities repositories.IdentityRepository
	bets       repositories.BetRepository
	stations   []string
	logger     *zap.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService with stationCount station labels
func NewUserService(users repositories.UserRepository, identities repositories.IdentityRepository, bets repositories.BetRepository, stationCount int, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		users:      users,
		identities: identities,
		bets:       bets,
		stations:   utils.StationLabels(stationCount),
		logger:     logger,
	}
}

// Stations returns the selectable station labels
func (s *UserServiceImpl) Stations() []string {
	return append([]string(nil), s.stations...)
}

// CreateUser provisions an identity and its profile
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return s.provision(ctx, req.Email, req.Password, req.IsAdmin, req.Station)
}

func (s *UserServiceImpl) provision(ctx context.Context, email, password string, isAdmin bool, station string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	station = strings.TrimSpace(station)

	var stationPtr *string
	if !isAdmin {
		if !s.validStation(station) {
			return nil, validationf("station %q is not one of the configured stations", station)
		}
		stationPtr = &station
	}

	if _, err := s.identities.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: account %s", ErrConflict, email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	identity := &models.Identity{Email: email, PasswordHash: string(hash)}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	user := &models.User{ID: identity.ID, Email: email, IsAdmin: isAdmin, Station: stationPtr}
	if err := s.users.Create(ctx, user); err != nil {
		if derr := s.identities.Delete(ctx, identity.ID); derr != nil {
			s.logger.Error("orphaned identity after failed profile create",
				zap.String("email", email), zap.Error(derr))
		}
		return nil, fmt.Errorf("create user profile: %w", err)
	}

	s.logger.Info("account created",
		zap.String("email", email),
		zap.Bool("isAdmin", isAdmin),
		zap.String("station", station))
	return user, nil
}

func (s *UserServiceImpl) validStation(station string) bool {
	for _, st := range s.stations {
		if st == station {
			return true
		}
	}
	return false
}

// ListUsers returns every profile ordered by station number, admins last
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.IsAdmin != b.IsAdmin {
			return !a.IsAdmin
		}
		if a.IsAdmin {
			return a.Email < b.Email
		}
		return utils.StationLess(a.StationName(), b.StationName())
	})
	return users, nil
}

// DeleteUser removes the profile with every bet it placed, then the
// identity. If a later step fails the earlier ones are restored from a
// snapshot and the error is returned.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actorID, id primitive.ObjectID) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	snapshot, err := s.bets.FindByUser(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("snapshot bets: %w", err)
	}

	log := s.logger.With(zap.String("email", user.Email), zap.String("id", id.Hex()))

	deleted, err := s.bets.DeleteByUser(ctx, user.Email)
	if err != nil {
		// DeleteMany may have removed part of the set.
		s.restoreBets(ctx, log, user.Email, snapshot)
		return fmt.Errorf("delete bets: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		s.restoreBets(ctx, log, user.Email, snapshot)
		return fmt.Errorf("delete user profile: %w", err)
	}

	if err := s.identities.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		if rerr := s.users.Create(ctx, user); rerr != nil {
			log.Error("failed to restore user profile", zap.Error(rerr))
		}
		s.restoreBets(ctx, log, user.Email, snapshot)
		return fmt.Errorf("delete identity: %w", err)
	}

	log.Info("account deleted", zap.Int64("bets", deleted))
	return nil
}

// restoreBets re-inserts whichever snapshot bets are no longer stored.
func (s *UserServiceImpl) restoreBets(ctx context.Context, log *zap.Logger, email string, snapshot []*models.Bet) {
	if len(snapshot) == 0 {
		return
	}
	remaining, err := s.bets.FindByUser(ctx, email)
	if err != nil {
		log.Error("failed to read bets for restore", zap.Error(err))
		return
	}
	present := make(map[primitive.ObjectID]bool, len(remaining))
	for _, b := range remaining {
		present[b.ID] = true
	}
	var missing []*models.Bet
	for _, b := range snapshot {
		if !present[b.ID] {
			missing = append(missing, b)
		}
	}
	if err := s.bets.InsertMany(ctx, missing); err != nil {
		log.Error("failed to restore bets", zap.Int("bets", len(missing)), zap.Error(err))
		return
	}
	log.Warn("account deletion rolled back", zap.Int("restoredBets", len(missing)))
}
