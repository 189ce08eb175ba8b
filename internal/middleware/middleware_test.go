package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/config"
	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setupAuthRouter(tokens *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/", JWTAuthMiddleware(tokens, zap.NewNop()))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString(ContextUserEmail), "station": c.GetString(ContextUserStation)})
	})
	protected.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	protected.GET("/station", RequireStation(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func do(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	router := setupAuthRouter(tokens)

	assert.Equal(t, http.StatusUnauthorized, do(router, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, "/me", "garbage").Code)

	token, _, err := tokens.Issue("id1", "st1@shop.ph", models.RoleStation, "Station 1")
	require.NoError(t, err)
	w := do(router, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"st1@shop.ph","station":"Station 1"}`, w.Body.String())
}

func TestRoleGuards(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	router := setupAuthRouter(tokens)
	station, _, _ := tokens.Issue("id1", "st1@shop.ph", models.RoleStation, "Station 1")
	admin, _, _ := tokens.Issue("id2", "boss@shop.ph", models.RoleAdmin, "")

	assert.Equal(t, http.StatusForbidden, do(router, "/admin", station).Code)
	assert.Equal(t, http.StatusOK, do(router, "/admin", admin).Code)
	assert.Equal(t, http.StatusForbidden, do(router, "/station", admin).Code)
	assert.Equal(t, http.StatusOK, do(router, "/station", station).Code)
}

func TestRequestIDAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	router := gin.New()
	router.Use(CORSMiddleware(cfg), RequestIDMiddleware(), LoggerMiddleware(zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type stubAccounts map[primitive.ObjectID]*models.User

func (s stubAccounts) Me(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, services.ErrNotFound
}

type brokenAccounts struct{}

func (brokenAccounts) Me(context.Context, primitive.ObjectID) (*models.User, error) {
	return nil, errors.New("database unavailable")
}

func setupActiveUserRouter(tokens *jwt.Manager, accounts AccountLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me",
		JWTAuthMiddleware(tokens, zap.NewNop()),
		ActiveUserMiddleware(accounts, zap.NewNop()),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"role": c.GetString(ContextUserRole), "station": c.GetString(ContextUserStation)})
		})
	return router
}

func TestActiveUserMiddleware(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	station := "Station 4"
	live := &models.User{ID: primitive.NewObjectID(), Email: "st4@shop.ph", Station: &station}
	accounts := stubAccounts{live.ID: live}
	router := setupActiveUserRouter(tokens, accounts)

	token, _, err := tokens.Issue(live.ID.Hex(), live.Email, models.RoleStation, "Station 9")
	require.NoError(t, err)
	w := do(router, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"station","station":"Station 4"}`, w.Body.String())

	deleted, _, _ := tokens.Issue(primitive.NewObjectID().Hex(), "gone@shop.ph", models.RoleStation, "Station 1")
	assert.Equal(t, http.StatusUnauthorized, do(router, "/me", deleted).Code)

	mismatched, _, _ := tokens.Issue(live.ID.Hex(), "someone@shop.ph", models.RoleStation, "Station 4")
	assert.Equal(t, http.StatusUnauthorized, do(router, "/me", mismatched).Code)

	broken := setupActiveUserRouter(tokens, brokenAccounts{})
	assert.Equal(t, http.StatusInternalServerError, do(broken, "/me", token).Code)
}
