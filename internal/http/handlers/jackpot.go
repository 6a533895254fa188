package handlers

import (
	"net/http"

	"membership_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) JackpotSummary(c *gin.Context) {
	view, err := h.Jackpot.Current(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to load jackpot")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) MyJackpot(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.Jackpot.ForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to load tickets")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) PayPalConfig(c *gin.Context) {
	if h.PayPal.ClientID == "" {
		respondError(c, http.StatusInternalServerError, "paypal is not configured")
		return
	}
	c.JSON(http.StatusOK, h.PayPal)
}
