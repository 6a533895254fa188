package handlers

import (
	"net/http"

	"membership_webapp/internal/http/middleware"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Referrer string `json:"referrer"`
}

type ReminderRequest struct {
	Email string `json:"email"`
}

func (h *Handler) AuthenticateUser(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password, requestMeta(c))
	if err != nil {
		respondServiceError(c, err, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user":       res.User,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	})
}

// RegisterUser serves both registration routes.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Referrer: req.Referrer,
	}, requestMeta(c))
	if err != nil {
		respondServiceError(c, err, "registration failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user":       res.User,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Auth.Logout(c.Request.Context(), claims, requestMeta(c)); err != nil {
		respondServiceError(c, err, "logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *Handler) SendUsernameReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Auth.SendUsernameReminder(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		respondServiceError(c, err, "failed to send reminder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "reminder sent"})
}
