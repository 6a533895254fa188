package handlers

import (
	"context"
	"errors"
	"net/http"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookVerifier checks that a webhook body was sent by the processor.
type WebhookVerifier interface {
	Verify(ctx context.Context, headers http.Header, body []byte) error
}

// UserReader resolves public profiles.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ReferralReader reports what a user's referrals produced.
type ReferralReader interface {
	Stats(ctx context.Context, userID int64, username string) (*repository.ReferralStats, error)
	ListReferred(ctx context.Context, username string, limit int) ([]repository.Referral, error)
}

// PayPalPublic is the client-side checkout configuration.
type PayPalPublic struct {
	ClientID    string `json:"clientId"`
	Environment string `json:"environment"`
}

type Handler struct {
	Auth      *service.AuthService
	Tips      *service.TipService
	Media     *service.MediaService
	Jackpot   *service.JackpotService
	Users     UserReader
	Referrals ReferralReader
	Audit     *service.AuditService

	// Webhook is nil when no webhook id is configured; deliveries are
	// then accepted unverified.
	Webhook WebhookVerifier
	PayPal  PayPalPublic
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondServiceError maps service sentinels onto status codes. Anything
// unrecognised is logged and reported as a generic 500.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnsupportedMedia),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err, "path", c.FullPath())
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// MethodNotAllowed is installed as the engine's NoMethod handler.
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, "method not allowed")
}

// NotFound is installed as the engine's NoRoute handler.
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "not found")
}
