package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/services"
)

// WagerHandler handles wager endpoints
type WagerHandler struct {
	wagerService *services.WagerService
}

// NewWagerHandler creates a new WagerHandler
func NewWagerHandler(wagerService *services.WagerService) *WagerHandler {
	return &WagerHandler{wagerService: wagerService}
}

func wagerResponses(wagers []*models.Wager) []models.WagerResponse {
	out := make([]models.WagerResponse, 0, len(wagers))
	for _, w := range wagers {
		out = append(out, services.NewWagerResponse(w))
	}
	return out
}

// CreateWager places a wager on another user's challenge. BOTH creates two.
// POST /api/wagers
func (h *WagerHandler) CreateWager(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wagers, err := h.wagerService.CreateWager(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, wagerResponses(wagers))
}

// CounterWager takes the opposite side of an open wager
// POST /api/wagers/:id/counter
func (h *WagerHandler) CounterWager(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	wagerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	wager, err := h.wagerService.CounterWager(c.Request.Context(), wagerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.NewWagerResponse(wager))
}

// CancelWager withdraws an open wager and refunds the creator
// POST /api/wagers/:id/cancel
func (h *WagerHandler) CancelWager(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	wagerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	wager, err := h.wagerService.CancelWager(c.Request.Context(), wagerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.NewWagerResponse(wager))
}

// GetWager retrieves a single wager
// GET /api/wagers/:id
func (h *WagerHandler) GetWager(c *gin.Context) {
	wagerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	wager, err := h.wagerService.GetWager(c.Request.Context(), wagerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.NewWagerResponse(wager))
}

// GetWagerByShareCode resolves a shared wager link
// GET /api/wagers/share/:code
func (h *WagerHandler) GetWagerByShareCode(c *gin.Context) {
	wager, err := h.wagerService.GetWagerByShareCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.NewWagerResponse(wager))
}

// ListRecentWagers returns the public wager feed
// GET /api/wagers
func (h *WagerHandler) ListRecentWagers(c *gin.Context) {
	wagers, err := h.wagerService.ListRecentWagers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wagerResponses(wagers))
}

// ListMyWagers returns wagers the caller created or countered
// GET /api/me/wagers
func (h *WagerHandler) ListMyWagers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wagers, err := h.wagerService.ListUserWagers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wagerResponses(wagers))
}
