package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

// CreateChallenge sets the caller's two goals
// POST /api/challenges
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challengeService.CreateChallenge(c.Request.Context(), userID, req.DexaGoal, req.FunctionalGoal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

// GetMyChallenge returns the caller's challenge
// GET /api/me/challenge
func (h *ChallengeHandler) GetMyChallenge(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.GetUserChallenge(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// GetUserChallenge returns another user's challenge
// GET /api/challenges/user/:id
func (h *ChallengeHandler) GetUserChallenge(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	challenge, err := h.challengeService.GetUserChallenge(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// ListRecentChallenges returns the latest challenges
// GET /api/challenges/recent
func (h *ChallengeHandler) ListRecentChallenges(c *gin.Context) {
	challenges, err := h.challengeService.ListRecentChallenges(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenges)
}

// ListChallenges returns every challenge
// GET /api/challenges
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	challenges, err := h.challengeService.ListChallenges(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenges)
}
