package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitcoin-challenge/internal/auth"
	"fitcoin-challenge/internal/services"
	"fitcoin-challenge/pkg/logger"
)

type errorMapping struct {
	err    error
	status int
}

// Checked in order; the first match wins.
var errorStatuses = []errorMapping{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrUnauthorized, http.StatusForbidden},
	{services.ErrNotCreator, http.StatusForbidden},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrInvalidResetToken, http.StatusBadRequest},
	{services.ErrInsufficientBalance, http.StatusBadRequest},
	{services.ErrInvalidAmount, http.StatusBadRequest},
	{services.ErrInvalidChallengeType, http.StatusBadRequest},
	{services.ErrInvalidPrediction, http.StatusBadRequest},
	{services.ErrInvalidOutcome, http.StatusBadRequest},
	{services.ErrInvalidGoal, http.StatusBadRequest},
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrSelfCounter, http.StatusBadRequest},
	{services.ErrWagerNotOpen, http.StatusConflict},
	{services.ErrNotPending, http.StatusConflict},
	{services.ErrChallengeAlreadyExists, http.StatusConflict},
	{services.ErrChallengeAlreadyResolved, http.StatusConflict},
	{services.ErrChallengeResolved, http.StatusConflict},
	{services.ErrBettingClosed, http.StatusConflict},
	{services.ErrDuplicateName, http.StatusConflict},
	{services.ErrDuplicateEmail, http.StatusConflict},
}

// respondError writes the status and message for a service error. Validation
// errors keep their full text so callers see which field failed; anything
// unrecognised is logged and reported as a generic failure.
func respondError(c *gin.Context, err error) {
	for _, m := range errorStatuses {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.err.Error()
		if m.status == http.StatusBadRequest {
			msg = err.Error()
		}
		c.JSON(m.status, gin.H{"error": msg})
		return
	}

	logger.Log.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
}

// currentUser returns the authenticated caller or writes 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid path parameter or writes 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
