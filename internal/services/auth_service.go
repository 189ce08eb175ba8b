package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"github.com/ArowuTest/lasto-station-backend/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceImpl implements AuthService
type AuthServiceImpl struct {
	accounts    *UserServiceImpl
	tokens      *jwt.Manager
	allowSignup bool
	logger      *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService creates a new AuthService
func NewAuthService(accounts *UserServiceImpl, tokens *jwt.Manager, allowSignup bool, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		accounts:    accounts,
		tokens:      tokens,
		allowSignup: allowSignup,
		logger:      logger,
	}
}

// Register handles self-signup. Only the very first account may be an
// admin; later signups always create station users.
func (s *AuthServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if !s.allowSignup {
		return nil, fmt.Errorf("%w: self-signup is disabled", ErrForbidden)
	}
	if req.IsAdmin {
		count, err := s.accounts.users.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: admin accounts are created by an admin", ErrForbidden)
		}
	}
	return s.accounts.provision(ctx, req.Email, req.Password, req.IsAdmin, req.Station)
}

// Login checks the credentials and issues a session token
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	identity, err := s.accounts.identities.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login failed", zap.String("email", email))
		return nil, ErrUnauthorized
	}

	user, err := s.accounts.users.FindByID(ctx, identity.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: no profile for %s", ErrUnauthorized, email)
	}
	if err != nil {
		return nil, err
	}

	token, expires, err := s.tokens.Issue(user.ID.Hex(), user.Email, user.Role(), user.StationName())
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", zap.String("email", email), zap.String("role", user.Role()))
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expires.Unix(),
		User:      user,
		Redirect:  user.HomePath(),
	}, nil
}

// Me returns the signed-in user's profile
func (s *AuthServiceImpl) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.accounts.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}
