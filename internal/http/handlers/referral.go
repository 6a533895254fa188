package handlers

import (
	"net/http"

	"membership_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

const referralListLimit = 100

// MyReferrals returns the signed-in user's referral totals and the
// accounts they referred.
func (h *Handler) MyReferrals(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	username, _ := middleware.Username(c)
	if !ok || username == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.Referrals == nil {
		respondError(c, http.StatusNotFound, "referrals unavailable")
		return
	}

	ctx := c.Request.Context()
	stats, err := h.Referrals.Stats(ctx, userID, username)
	if err != nil {
		respondServiceError(c, err, "failed to load referral stats")
		return
	}
	referred, err := h.Referrals.ListReferred(ctx, username, referralListLimit)
	if err != nil {
		respondServiceError(c, err, "failed to load referrals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"stats":     stats,
		"referrals": referred,
	})
}
