package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	ContextUserID      = "userID"
	ContextUserEmail   = "userEmail"
	ContextUserRole    = "userRole"
	ContextUserStation = "userStation"
)

const (
	bearerSchema    = "Bearer "
	tokenQueryParam = "access_token"
)

// JWTAuthMiddleware creates a gin middleware for JWT authentication.
func JWTAuthMiddleware(tokens *jwt.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		// Browsers cannot set headers on a WebSocket handshake.
		if authHeader == "" && c.Query(tokenQueryParam) != "" {
			authHeader = bearerSchema + c.Query(tokenQueryParam)
		}
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(authHeader[len(bearerSchema):]))
		if err != nil {
			logger.Debug("token rejected", zap.Error(err), zap.String("path", c.FullPath()))
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserStation, claims.Station)
		c.Next()
	}
}

// AccountLookup loads the profile behind a token subject.
type AccountLookup interface {
	Me(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ActiveUserMiddleware rejects tokens whose account has been deleted or
// re-created since the token was issued. It runs after JWTAuthMiddleware and
// refreshes the role and station from the stored profile.
func ActiveUserMiddleware(accounts AccountLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.GetString(ContextUserID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			return
		}

		user, err := accounts.Me(c.Request.Context(), id)
		if errors.Is(err, services.ErrNotFound) {
			logger.Info("token for deleted account", zap.String("subject", id.Hex()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !strings.EqualFold(user.Email, c.GetString(ContextUserEmail)) {
			logger.Warn("token email does not match profile",
				zap.String("subject", id.Hex()), zap.String("claim", c.GetString(ContextUserEmail)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserRole, user.Role())
		c.Set(ContextUserStation, user.StationName())
		c.Next()
	}
}

// RequireRole aborts with 403 unless the token carries the given role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts a route group to admins.
func RequireAdmin() gin.HandlerFunc { return RequireRole(models.RoleAdmin) }

// RequireStation restricts a route group to station users.
func RequireStation() gin.HandlerFunc { return RequireRole(models.RoleStation) }
