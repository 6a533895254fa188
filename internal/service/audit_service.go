package service

import (
	"context"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditService handles audit logging
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(db *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(db),
	}
}

// Log creates a new audit log entry. A nil service logs nothing, which keeps
// callers under test free of a database.
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, "", "", details)
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	if s == nil {
		return
	}

	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogLogin logs a user login
func (s *AuditService) LogLogin(ctx context.Context, userID int64, ip, userAgent string) {
	s.LogWithRequest(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent, nil)
}

// LogTip records a settled tip against the tipper.
func (s *AuditService) LogTip(ctx context.Context, st *Settlement) {
	if st == nil || st.Tip == nil {
		return
	}
	s.Log(ctx, st.Tip.TipperID, domain.AuditActionTipSettled, domain.AuditCategoryPayment, map[string]interface{}{
		"order_id":   st.Payment.ExternalOrderID,
		"amount":     st.Tip.Amount.String(),
		"tipped":     st.Tip.TippedUsername,
		"tickets":    st.TicketsIssued,
		"commission": st.Tip.ReferrerCommission.String(),
	})
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// GetLogsByCategory returns logs by category
func (s *AuditService) GetLogsByCategory(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByCategory(ctx, category, limit)
}
