package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/pkg/logger"
)

// ResetNotifier delivers a password reset token to the account owner
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error
}

// logResetNotifier records that a reset was requested. It has no delivery
// channel and never writes the token.
type logResetNotifier struct{}

func (logResetNotifier) SendPasswordReset(_ context.Context, user *models.User, _ string, expiresAt time.Time) error {
	logger.Log.Warn("password reset requested but no delivery channel is configured",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
