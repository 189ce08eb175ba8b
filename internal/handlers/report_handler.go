package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the admin aggregation views
type ReportHandler struct {
	reportService services.ReportService
	schedule      *services.DrawSchedule
}

// NewReportHandler creates a new ReportHandler. Missing dates default to
// today in the draw timezone.
func NewReportHandler(reportService services.ReportService, schedule *services.DrawSchedule) *ReportHandler {
	return &ReportHandler{reportService: reportService, schedule: schedule}
}

func (h *ReportHandler) date(c *gin.Context, key string) string {
	if d := c.Query(key); d != "" {
		return d
	}
	return h.schedule.Today()
}

func (h *ReportHandler) dateRange(c *gin.Context) (string, string) {
	from := h.date(c, "from")
	to := c.Query("to")
	if to == "" {
		to = from
	}
	return from, to
}

// GetDashboard handles GET /admin/dashboard?date=
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	d, err := h.reportService.Dashboard(c.Request.Context(), h.date(c, "date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetStations handles GET /admin/stations?from=&to=
func (h *ReportHandler) GetStations(c *gin.Context) {
	from, to := h.dateRange(c)
	groups, err := h.reportService.StationSummary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "stations": groups})
}

// GetStationBets handles GET /admin/stations/:station/bets?from=&to=
func (h *ReportHandler) GetStationBets(c *gin.Context) {
	from, to := h.dateRange(c)
	summary, err := h.reportService.StationBets(c.Request.Context(), c.Param("station"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetNumberTotals handles GET /admin/numbers?date=&q=
func (h *ReportHandler) GetNumberTotals(c *gin.Context) {
	date := h.date(c, "date")
	totals, err := h.reportService.NumberTotals(c.Request.Context(), date, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "numbers": totals})
}

// Export handles GET /admin/export?station=&from=&to=&format=
func (h *ReportHandler) Export(c *gin.Context) {
	from, to := h.dateRange(c)
	station := c.Query("station")
	format := strings.ToLower(c.DefaultQuery("format", utils.FormatXLSX))

	// Rendered into memory first so a failure still yields a JSON error.
	var buf bytes.Buffer
	if err := h.reportService.Export(c.Request.Context(), &buf, station, from, to, format); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(station, from, to, format)))
	c.Data(http.StatusOK, utils.ContentType(format), buf.Bytes())
}

func exportFilename(station, from, to, format string) string {
	name := "all-stations"
	if station != "" {
		name = strings.ReplaceAll(strings.ToLower(station), " ", "-")
	}
	if from == to {
		return fmt.Sprintf("bets-%s-%s.%s", name, from, format)
	}
	return fmt.Sprintf("bets-%s-%s_%s.%s", name, from, to, format)
}
