package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitcoin-challenge/pkg/logger"
)

const (
	ctxUserID       = "user_id"
	ctxUserName     = "user_name"
	ctxTokenID      = "token_id"
	ctxTokenExpires = "token_expires"
)

// AuthMiddleware validates JWT tokens and protects routes. A nil denylist
// disables revocation checks.
func AuthMiddleware(denylist Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			logger.Log.Debug("token validation failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if denylist != nil {
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Log.Error("denylist lookup failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to check token status",
				})
				c.Abort()
				return
			}
			if revoked {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Token has been revoked",
				})
				c.Abort()
				return
			}
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserName, claims.Name)
		c.Set(ctxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExpires, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetToken returns the current token's ID and expiry
func GetToken(c *gin.Context) (string, time.Time, bool) {
	id := c.GetString(ctxTokenID)
	if id == "" {
		return "", time.Time{}, false
	}
	return id, c.GetTime(ctxTokenExpires), true
}
