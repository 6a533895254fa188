package service

import (
	"context"
	"time"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AdminService provides operator statistics
type AdminService struct {
	db      *pgxpool.Pool
	drawLoc *time.Location
}

// NewAdminService creates a new admin service
func NewAdminService(db *pgxpool.Pool, drawLoc *time.Location) *AdminService {
	return &AdminService{db: db, drawLoc: drawLoc}
}

// Stats represents platform statistics
type Stats struct {
	TotalUsers        int64           `json:"total_users"`
	NewUsersToday     int64           `json:"new_users_today"`
	SilverPlusMembers int64           `json:"silver_plus_members"`
	DiamondMembers    int64           `json:"diamond_plus_members"`
	TipsTotal         int64           `json:"tips_total"`
	TipsToday         int64           `json:"tips_today"`
	TippedTotal       decimal.Decimal `json:"tipped_total"`
	TippedToday       decimal.Decimal `json:"tipped_today"`
	NextDraw          time.Time       `json:"next_draw"`
	NextDrawTickets   int64           `json:"next_draw_tickets"`
	PendingPayouts    int64           `json:"pending_payouts"`
	PendingPayoutSum  decimal.Decimal `json:"pending_payout_sum"`
}

// GetStats returns platform statistics. Today is measured from midnight UTC.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{NextDraw: domain.NextDrawDate(time.Now(), s.drawLoc)}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var tippedTotal, tippedToday, pendingSum string

	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE silver_plus_active),
			COUNT(*) FILTER (WHERE diamond_plus_active)
		FROM users
	`, today).Scan(&stats.TotalUsers, &stats.NewUsersToday, &stats.SilverPlusMembers, &stats.DiamondMembers)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed_at >= $1),
			COALESCE(SUM(amount), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE completed_at >= $1), 0)::text
		FROM tip_transactions
	`, today).Scan(&stats.TipsTotal, &stats.TipsToday, &tippedTotal, &tippedToday)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(count), 0) FROM jackpot_tickets WHERE draw_date = $1
	`, stats.NextDraw).Scan(&stats.NextDrawTickets)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)::text
		FROM commission_payouts
		WHERE status = $1
	`, domain.CommissionStatusPending).Scan(&stats.PendingPayouts, &pendingSum)
	if err != nil {
		return nil, err
	}

	stats.TippedTotal, _ = decimal.NewFromString(tippedTotal)
	stats.TippedToday, _ = decimal.NewFromString(tippedToday)
	stats.PendingPayoutSum, _ = decimal.NewFromString(pendingSum)

	return stats, nil
}
