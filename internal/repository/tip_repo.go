package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TipRepository struct {
	db *pgxpool.Pool
}

func NewTipRepository(db *pgxpool.Pool) *TipRepository {
	return &TipRepository{db: db}
}

func (r *TipRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, t *domain.TipTransaction) error {
	var referrer *string
	if t.ReferrerUsername != "" {
		referrer = &t.ReferrerUsername
	}

	return tx.QueryRow(ctx, `
		INSERT INTO tip_transactions
			(payment_id, tipper_id, tipped_id, tipped_username, amount,
			 referrer_username, referrer_commission, tickets_generated)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7::numeric, $8)
		RETURNING id, completed_at
	`, t.PaymentID, t.TipperID, t.TippedID, t.TippedUsername, t.Amount.String(),
		referrer, t.ReferrerCommission.String(), t.TicketsGenerated,
	).Scan(&t.ID, &t.CompletedAt)
}

// ListByTipped returns the most recent tips received by a user.
func (r *TipRepository) ListByTipped(ctx context.Context, userID int64, limit int) ([]*domain.TipTransaction, error) {
	return r.list(ctx, `WHERE tipped_id = $1`, userID, limit)
}

// ListByTipper returns the most recent tips sent by a user.
func (r *TipRepository) ListByTipper(ctx context.Context, userID int64, limit int) ([]*domain.TipTransaction, error) {
	return r.list(ctx, `WHERE tipper_id = $1`, userID, limit)
}

func (r *TipRepository) list(ctx context.Context, where string, userID int64, limit int) ([]*domain.TipTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, payment_id, tipper_id, tipped_id, tipped_username, amount::text,
		       COALESCE(referrer_username, ''), referrer_commission::text, tickets_generated, completed_at
		FROM tip_transactions `+where+`
		ORDER BY completed_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []*domain.TipTransaction
	for rows.Next() {
		var (
			t                  domain.TipTransaction
			amount, commission string
		)
		if err := rows.Scan(&t.ID, &t.PaymentID, &t.TipperID, &t.TippedID, &t.TippedUsername,
			&amount, &t.ReferrerUsername, &commission, &t.TicketsGenerated, &t.CompletedAt); err != nil {
			return nil, err
		}
		t.Amount = parseDecimal(amount)
		t.ReferrerCommission = parseDecimal(commission)
		tips = append(tips, &t)
	}
	return tips, rows.Err()
}
