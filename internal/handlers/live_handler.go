package handlers

import (
	"context"
	"net/http"

	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Live views.
const (
	ViewDashboard = "dashboard"
	ViewNumbers   = "numbers"
	ViewStations  = "stations"
)

// LiveHandler upgrades admin clients to a WebSocket feed that is
// re-rendered after every bet or user change
type LiveHandler struct {
	reportService services.ReportService
	schedule      *services.DrawSchedule
	live          *websocket.Server
	logger        *zap.Logger
}

// NewLiveHandler creates a new LiveHandler
func NewLiveHandler(reportService services.ReportService, schedule *services.DrawSchedule, live *websocket.Server, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{reportService: reportService, schedule: schedule, live: live, logger: logger}
}

// Live handles GET /admin/live?view=&date=&from=&to=&q=
func (h *LiveHandler) Live(c *gin.Context) {
	view := c.DefaultQuery("view", ViewDashboard)
	render, ok := h.renderer(c, view)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown view " + view})
		return
	}

	conn, err := h.live.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	ctx := c.Request.Context()
	h.live.Serve(ctx, conn, view, h.reportService.Subscribe(ctx), render)
}

// renderer binds the query parameters now; the feed outlives gin's
// context.
func (h *LiveHandler) renderer(c *gin.Context, view string) (websocket.Renderer, bool) {
	date := c.Query("date")
	from, to := c.Query("from"), c.Query("to")
	search := c.Query("q")
	day := func() string {
		if date != "" {
			return date
		}
		return h.schedule.Today()
	}

	switch view {
	case ViewDashboard:
		return func(ctx context.Context) (interface{}, error) {
			return h.reportService.Dashboard(ctx, day())
		}, true
	case ViewNumbers:
		return func(ctx context.Context) (interface{}, error) {
			return h.reportService.NumberTotals(ctx, day(), search)
		}, true
	case ViewStations:
		return func(ctx context.Context) (interface{}, error) {
			f, t := from, to
			if f == "" {
				f = h.schedule.Today()
			}
			if t == "" {
				t = f
			}
			return h.reportService.StationSummary(ctx, f, t)
		}, true
	}
	return nil, false
}
