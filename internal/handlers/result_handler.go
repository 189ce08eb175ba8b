package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ResultHandler serves draw results
type ResultHandler struct {
	resultService services.ResultService
}

// NewResultHandler creates a new ResultHandler
func NewResultHandler(resultService services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// GetResult handles GET /results/:date
func (h *ResultHandler) GetResult(c *gin.Context) {
	res, err := h.resultService.GetResult(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetLatestResults handles GET /results/latest?limit=
func (h *ResultHandler) GetLatestResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "7"))
	results, err := h.resultService.LatestResults(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// UpsertResult handles PUT /admin/results/:date. Blank fields keep their
// stored value.
func (h *ResultHandler) UpsertResult(c *gin.Context) {
	var in models.ResultInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.resultService.UpsertResult(c.Request.Context(), c.Param("date"), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
