package handlers

import (
	"net/http"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// LoadControlHandler serves the admin load-control form
type LoadControlHandler struct {
	loadService services.LoadControlService
}

// NewLoadControlHandler creates a new LoadControlHandler
func NewLoadControlHandler(loadService services.LoadControlService) *LoadControlHandler {
	return &LoadControlHandler{loadService: loadService}
}

// GetLoadControl handles GET /admin/load-control. Before the first save
// the form is empty, so 404 is reported as {"loadControl": null}.
func (h *LoadControlHandler) GetLoadControl(c *gin.Context) {
	lc, err := h.loadService.Get(c.Request.Context())
	if err != nil && statusFor(err) != http.StatusNotFound {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loadControl": lc, "exists": lc != nil})
}

// UpsertLoadControl handles PUT /admin/load-control
func (h *LoadControlHandler) UpsertLoadControl(c *gin.Context) {
	var in models.LoadControlInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lc, err := h.loadService.Upsert(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loadControl": lc, "exists": true})
}
