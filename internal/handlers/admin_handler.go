package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitcoin-challenge/internal/auth"
	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/services"
)

type AdminHandler struct {
	adminService    *services.AdminService
	wagerService    *services.WagerService
	fundService     *services.FundService
	settingsService *services.SettingsService
}

func NewAdminHandler(
	adminService *services.AdminService,
	wagerService *services.WagerService,
	fundService *services.FundService,
	settingsService *services.SettingsService,
) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		wagerService:    wagerService,
		fundService:     fundService,
		settingsService: settingsService,
	}
}

// AdminMiddleware checks if user is admin. Services check again inside their
// transactions; this only keeps non-admins away from the admin routes.
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !h.adminService.IsAdmin(c.Request.Context(), userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not an admin"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ResolveChallenge records a sub-challenge outcome and settles its wagers
// POST /api/admin/challenges/:id/resolve
func (h *AdminHandler) ResolveChallenge(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ResolveChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.wagerService.ResolveChallenge(c.Request.Context(), adminID, targetID, req.ChallengeType, req.Outcome)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListPendingFundRequests returns requests awaiting review
// GET /api/admin/fund-requests
func (h *AdminHandler) ListPendingFundRequests(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.fundService.ListPendingRequests(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ApproveFundRequest credits the requester and grows the euro pool
// POST /api/admin/fund-requests/:id/approve
func (h *AdminHandler) ApproveFundRequest(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.fundService.ApproveRequest(c.Request.Context(), requestID, adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// RejectFundRequest closes a request without moving funds
// POST /api/admin/fund-requests/:id/reject
func (h *AdminHandler) RejectFundRequest(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.RejectFundRequestRequest
	// Body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	request, err := h.fundService.RejectRequest(c.Request.Context(), requestID, adminID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// SetChallengeEndDate sets or clears the betting deadline
// PUT /api/admin/settings/challenge-end-date
func (h *AdminHandler) SetChallengeEndDate(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		EndDate *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var end time.Time
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if err := h.settingsService.SetChallengeEndDate(c.Request.Context(), adminID, end); err != nil {
		respondError(c, err)
		return
	}

	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SetAdmin grants or revokes admin rights
// PUT /api/admin/users/:id/admin
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsAdmin *bool `json:"is_admin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.adminService.SetAdmin(c.Request.Context(), adminID, userID, *req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetLedgerStats returns system-wide coin totals
// GET /api/admin/stats
func (h *AdminHandler) GetLedgerStats(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.adminService.GetLedgerStats(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
