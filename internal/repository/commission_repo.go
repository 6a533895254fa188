package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommissionRepository struct {
	db *pgxpool.Pool
}

func NewCommissionRepository(db *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *domain.CommissionPayout) error {
	return tx.QueryRow(ctx, `
		INSERT INTO commission_payouts (user_id, amount, type, status, source_payment_id)
		VALUES ($1, $2::numeric, $3, $4, $5)
		RETURNING id, created_at
	`, c.UserID, c.Amount.String(), c.Type, c.Status, c.SourcePaymentID).Scan(&c.ID, &c.CreatedAt)
}

// ListPending returns unpaid commissions, oldest first.
func (r *CommissionRepository) ListPending(ctx context.Context, limit int) ([]*domain.CommissionPayout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount::text, type, status, source_payment_id, created_at
		FROM commission_payouts
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`, domain.CommissionStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CommissionPayout
	for rows.Next() {
		var (
			c      domain.CommissionPayout
			amount string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &amount, &c.Type, &c.Status, &c.SourcePaymentID, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Amount = parseDecimal(amount)
		out = append(out, &c)
	}
	return out, rows.Err()
}
