package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// BetHandler serves the station bet form
type BetHandler struct {
	betService  services.BetService
	loadService services.LoadControlService
}

// NewBetHandler creates a new BetHandler
func NewBetHandler(betService services.BetService, loadService services.LoadControlService) *BetHandler {
	return &BetHandler{betService: betService, loadService: loadService}
}

// GetDrawTimes handles GET /station/draw-times?date=
func (h *BetHandler) GetDrawTimes(c *gin.Context) {
	slots, err := h.betService.AvailableDrawTimes(c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drawTimes": slots})
}

// GetReferenceNumber handles GET /station/reference-number
func (h *BetHandler) GetReferenceNumber(c *gin.Context) {
	ref, err := h.betService.GenerateReferenceNo()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referenceNo": ref})
}

// SubmitBet handles POST /station/bets
func (h *BetHandler) SubmitBet(c *gin.Context) {
	var req models.SubmitBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.SubmitBet(c.Request.Context(), currentEmail(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bet)
}

// GetMyBets handles GET /station/bets?date=
func (h *BetHandler) GetMyBets(c *gin.Context) {
	list, err := h.betService.ListMyBets(c.Request.Context(), currentEmail(c), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetSlipQRCode handles GET /station/bets/:id/qrcode?size=
func (h *BetHandler) GetSlipQRCode(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultQRSize)))
	if err != nil || size <= 0 || size > maxQRSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}

	png, err := h.betService.SlipQRCode(c.Request.Context(), currentEmail(c), id, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GetLoadControl handles GET /station/load-control so the form can warn
// before submitting
func (h *BetHandler) GetLoadControl(c *gin.Context) {
	lc, err := h.loadService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lc)
}
