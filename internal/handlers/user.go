package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitcoin-challenge/internal/services"
)

type UserHandler struct {
	userService   *services.UserService
	payoutService *services.PayoutService
}

func NewUserHandler(userService *services.UserService, payoutService *services.PayoutService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		payoutService: payoutService,
	}
}

// Leaderboard returns users ordered by balance
// GET /api/leaderboard
func (h *UserHandler) Leaderboard(c *gin.Context) {
	users, err := h.userService.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Directory returns every user by name
// GET /api/users
func (h *UserHandler) Directory(c *gin.Context) {
	users, err := h.userService.Directory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns a user's public profile
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// GetUserPayout returns a user's projected payout
// GET /api/users/:id/payout
func (h *UserHandler) GetUserPayout(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payout, err := h.payoutService.ComputePayout(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}

// GetMyPayout returns the caller's projected payout
// GET /api/me/payout
func (h *UserHandler) GetMyPayout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	payout, err := h.payoutService.ComputePayout(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}

// GetMyTransactions returns the caller's balance history
// GET /api/me/transactions
func (h *UserHandler) GetMyTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	txs, err := h.userService.Transactions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// UpdateAvatar sets or clears the caller's avatar
// PUT /api/me/avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		AvatarURL string `json:"avatar_url" binding:"max=2048"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateAvatar(c.Request.Context(), userID, req.AvatarURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
