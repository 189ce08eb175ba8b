package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: bad number", services.ErrValidation): http.StatusBadRequest,
		services.ErrUnauthorized:                             http.StatusUnauthorized,
		services.ErrForbidden:                                http.StatusForbidden,
		services.ErrNotFound:                                 http.StatusNotFound,
		services.ErrConflict:                                 http.StatusConflict,
		services.ErrLoadExceeded:                             http.StatusUnprocessableEntity,
		services.ErrDrawClosed:                               http.StatusUnprocessableEntity,
		errors.New("connection reset"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("mongo: socket closed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Len(t, c.Errors, 1)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "bets-station-3-2024-01-01.xlsx", exportFilename("Station 3", "2024-01-01", "2024-01-01", "xlsx"))
	assert.Equal(t, "bets-all-stations-2024-01-01_2024-01-03.csv", exportFilename("", "2024-01-01", "2024-01-03", "csv"))
}

func TestLiveRejectsUnknownView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewLiveHandler(nil, nil, nil, zap.NewNop())
	router := gin.New()
	router.GET("/live", h.Live)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live?view=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serve := func(ping func(context.Context) error) *httptest.ResponseRecorder {
		router := gin.New()
		router.GET("/health", NewHealthHandler(ping, zap.NewNop()).Check)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w
	}

	w := serve(nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	var pinged bool
	w = serve(func(ctx context.Context) error {
		pinged = true
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	assert.True(t, pinged)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(func(context.Context) error { return errors.New("server selection timeout") })
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","error":"Database unreachable"}`, w.Body.String())
}
