package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Referral is an account that signed up with someone's username as referrer.
type Referral struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ReferralStats struct {
	TotalReferrals     int64           `json:"total_referrals"`
	TotalEarned        decimal.Decimal `json:"total_earned"`
	PendingCommissions decimal.Decimal `json:"pending_commissions"`
}

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// ListReferred returns the accounts referred by username, newest first.
func (r *ReferralRepository) ListReferred(ctx context.Context, username string, limit int) ([]Referral, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, created_at
		 FROM users
		 WHERE referred_by = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		username, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referrals := []Referral{}
	for rows.Next() {
		var ref Referral
		if err := rows.Scan(&ref.UserID, &ref.Username, &ref.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

// Stats totals the referral activity of the user with the given id and username.
func (r *ReferralRepository) Stats(ctx context.Context, userID int64, username string) (*ReferralStats, error) {
	var earned, pending string
	stats := &ReferralStats{}

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE referred_by = $2),
			COALESCE((SELECT referral_earnings::text FROM users WHERE id = $1), '0'),
			(SELECT COALESCE(SUM(amount), 0)::text FROM commission_payouts WHERE user_id = $1 AND status = 'pending')
	`, userID, username).Scan(&stats.TotalReferrals, &earned, &pending)
	if err != nil {
		return nil, translate(err)
	}

	stats.TotalEarned = parseDecimal(earned)
	stats.PendingCommissions = parseDecimal(pending)
	return stats, nil
}
