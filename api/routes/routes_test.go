package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/config"
	"github.com/ArowuTest/lasto-station-backend/internal/handlers"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories/memory"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/internal/websocket"
	"github.com/ArowuTest/lasto-station-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	router *gin.Engine
}

// newTestApp wires the full router over in-memory repositories with the
// clock pinned to 2024-01-01 14:00 Manila time.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc := time.FixedZone("PHT", 8*60*60)
	now := time.Date(2024, 1, 1, 14, 0, 0, 0, loc)
	logger := zap.NewNop()
	hub := notify.NewHub(logger)

	users := memory.NewUserRepository(hub)
	identities := memory.NewIdentityRepository()
	bets := memory.NewBetRepository(hub)
	results := memory.NewResultRepository(hub)
	loads := memory.NewLoadControlRepository(hub)

	schedule := services.NewDrawSchedule(loc, func() time.Time { return now })
	tokens := jwt.NewManager("test-secret", time.Hour)

	userService := services.NewUserService(users, identities, bets, 25, logger)
	authService := services.NewAuthService(userService, tokens, true, logger)
	betService := services.NewBetService(bets, loads, schedule, false, logger)
	loadService := services.NewLoadControlService(loads, schedule, logger)
	resultService := services.NewResultService(results, logger)
	reportService := services.NewReportService(bets, users, hub, logger)

	cfg := &config.Config{Environment: "test", Server: config.ServerConfig{AllowedOrigins: []string{"*"}}}
	deps := HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService),
		UserHandler:        handlers.NewUserHandler(userService),
		BetHandler:         handlers.NewBetHandler(betService, loadService),
		ReportHandler:      handlers.NewReportHandler(reportService, schedule),
		ResultHandler:      handlers.NewResultHandler(resultService),
		LoadControlHandler: handlers.NewLoadControlHandler(loadService),
		LiveHandler:        handlers.NewLiveHandler(reportService, schedule, websocket.NewServer(nil, logger), logger),
		HealthHandler:      handlers.NewHealthHandler(nil, logger),
	}
	return &testApp{router: SetupRouter(cfg, deps, tokens, authService, logger)}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (a *testApp) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token    string `json:"token"`
		Redirect string `json:"redirect"`
	}
	decode(t, w, &resp)
	return resp.Token, resp.Redirect
}

// seed creates the first admin and one station user and returns their tokens
// and the station user's id.
func (a *testApp) seed(t *testing.T) (admin, station, stationID string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "boss@shop.ph", "password": "secret1", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	admin, redirect := a.login(t, "boss@shop.ph", "secret1")
	assert.Equal(t, "/admin", redirect)

	w = a.do(t, http.MethodPost, "/api/v1/admin/users", admin, gin.H{
		"email": "st1@shop.ph", "password": "secret1", "station": "Station 1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	station, redirect = a.login(t, "st1@shop.ph", "secret1")
	assert.Equal(t, "/station", redirect)
	return admin, station, created.ID
}

func TestHealthAndGuards(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/health", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/v1/admin/dashboard", "", nil).Code)

	admin, station, _ := app.seed(t)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/v1/admin/dashboard", station, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/v1/station/bets", admin, nil).Code)

	// A second self-registered admin is refused.
	w := app.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "other@shop.ph", "password": "secret1", "isAdmin": true,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDrawTimesRespectCutoff(t *testing.T) {
	app := newTestApp(t)
	_, station, _ := app.seed(t)

	w := app.do(t, http.MethodGet, "/api/v1/station/draw-times?date=2024-01-01", station, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		DrawTimes []struct {
			Time string `json:"time"`
			Open bool   `json:"open"`
		} `json:"drawTimes"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.DrawTimes, 3)
	assert.Equal(t, "2pm", resp.DrawTimes[0].Time)
	assert.False(t, resp.DrawTimes[0].Open)
	assert.True(t, resp.DrawTimes[1].Open)
	assert.True(t, resp.DrawTimes[2].Open)
}

func TestBetFlow(t *testing.T) {
	app := newTestApp(t)
	admin, station, stationID := app.seed(t)

	w := app.do(t, http.MethodGet, "/api/v1/admin/load-control", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loadControl":null,"exists":false}`, w.Body.String())

	w = app.do(t, http.MethodPut, "/api/v1/admin/load-control", admin, gin.H{
		"lasto": gin.H{"numbers": "12", "amount": 100},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	slip := func(slot string, amount float64) gin.H {
		return gin.H{
			"referenceNo": "123456",
			"drawDate":    gin.H{"date": "2024-01-01", "time": slot},
			"bets": []gin.H{
				{"game": "lasto", "number": "12", "amount": amount},
				{"game": "swertres", "number": "123", "amount": 20},
			},
		}
	}

	w = app.do(t, http.MethodPost, "/api/v1/station/bets", station, slip("5pm", 150))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/v1/station/bets", station, slip("2pm", 50))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/v1/station/bets", station, gin.H{
		"drawDate": gin.H{"date": "01/01/2024", "time": "5pm"},
		"bets":     []gin.H{{"game": "lasto", "number": "12", "amount": 5}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/v1/station/bets", station, slip("5pm", 50))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bet struct {
		ID    string `json:"id"`
		Total struct {
			Amount float64 `json:"amount"`
			Bets   int     `json:"bets"`
		} `json:"total"`
	}
	decode(t, w, &bet)
	assert.Equal(t, 70.0, bet.Total.Amount)
	assert.Equal(t, 2, bet.Total.Bets)

	w = app.do(t, http.MethodGet, "/api/v1/station/bets/"+bet.ID+"/qrcode", station, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = app.do(t, http.MethodGet, "/api/v1/admin/dashboard?date=2024-01-01", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Total struct {
			Amount float64 `json:"amount"`
		} `json:"total"`
		ByTime map[string]float64 `json:"byTime"`
	}
	decode(t, w, &dash)
	assert.Equal(t, 70.0, dash.Total.Amount)
	assert.Equal(t, 70.0, dash.ByTime["5pm"])

	w = app.do(t, http.MethodGet, "/api/v1/admin/export?format=csv&from=2024-01-01", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bets-all-stations-2024-01-01.csv")
	assert.Contains(t, w.Body.String(), "Station 1")

	w = app.do(t, http.MethodDelete, "/api/v1/admin/users/"+stationID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/v1/admin/dashboard?date=2024-01-01", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dash)
	assert.Zero(t, dash.Total.Amount)
}

func TestResultsUpsert(t *testing.T) {
	app := newTestApp(t)
	admin, station, _ := app.seed(t)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/v1/results/2024-01-01", station, nil).Code)

	w := app.do(t, http.MethodPut, "/api/v1/admin/results/2024-01-01", admin, gin.H{"lasto2pm": "07"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.do(t, http.MethodPut, "/api/v1/admin/results/2024-01-01", admin, gin.H{"swertres5pm": "123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/v1/results/2024-01-01", station, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res map[string]interface{}
	decode(t, w, &res)
	assert.Equal(t, "07", res["lasto2pm"])
	assert.Equal(t, "123", res["swertres5pm"])

	w = app.do(t, http.MethodGet, "/api/v1/results/latest", station, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2024-01-01")
}

func TestDeleteSelfForbidden(t *testing.T) {
	app := newTestApp(t)
	admin, _, _ := app.seed(t)

	w := app.do(t, http.MethodGet, "/api/v1/auth/me", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, w, &me)

	w = app.do(t, http.MethodDelete, "/api/v1/admin/users/"+me.User.ID, admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	app := newTestApp(t)
	admin, station, stationID := app.seed(t)

	slip := gin.H{
		"drawDate": gin.H{"date": "2024-01-01", "time": "5pm"},
		"bets":     []gin.H{{"game": "lasto", "number": "12", "amount": 10}},
	}
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/v1/station/bets", station, slip).Code)

	w := app.do(t, http.MethodDelete, "/api/v1/admin/users/"+stationID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/v1/station/bets", station, slip)
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/v1/station/bets", station, nil).Code)

	// Re-creating the account under the same email does not revive the old token.
	w = app.do(t, http.MethodPost, "/api/v1/admin/users", admin, gin.H{
		"email": "st1@shop.ph", "password": "secret1", "station": "Station 1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = app.do(t, http.MethodPost, "/api/v1/station/bets", station, slip)
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/v1/admin/stations?from=2024-01-01", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Unknown Station")
}
