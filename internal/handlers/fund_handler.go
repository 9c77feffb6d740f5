package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/services"
)

type FundHandler struct {
	fundService *services.FundService
}

func NewFundHandler(fundService *services.FundService) *FundHandler {
	return &FundHandler{fundService: fundService}
}

// RequestFunds asks an admin to convert euros into FitCoins
// POST /api/fund-requests
func (h *FundHandler) RequestFunds(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateFundRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.fundService.RequestFunds(c.Request.Context(), userID, req.EuroAmount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListMyRequests returns the caller's fund requests
// GET /api/me/fund-requests
func (h *FundHandler) ListMyRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.fundService.ListUserRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}
