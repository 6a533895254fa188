package repository

import (
	"context"
	"errors"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateWithTx inserts p unless a payment for the same external order id
// already exists, in which case ErrDuplicate is returned and nothing is
// written.
func (r *PaymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	var captureID *string
	if p.CaptureID != "" {
		captureID = &p.CaptureID
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO payments (user_id, amount, currency, status, payment_type, external_order_id, capture_id)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, $7)
		ON CONFLICT (external_order_id) DO NOTHING
		RETURNING id, created_at
	`, p.UserID, p.Amount.String(), p.Currency, p.Status, p.PaymentType, p.ExternalOrderID, captureID,
	).Scan(&p.ID, &p.CreatedAt)
	err = translate(err)
	if errors.Is(err, ErrNotFound) {
		return ErrDuplicate
	}
	return err
}

// GetByOrderID returns the payment recorded for an external order id.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount::text, currency, status, payment_type, external_order_id,
		       COALESCE(capture_id, ''), created_at
		FROM payments
		WHERE external_order_id = $1
	`, orderID).Scan(
		&p.ID, &p.UserID, &amount, &p.Currency, &p.Status, &p.PaymentType,
		&p.ExternalOrderID, &p.CaptureID, &p.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	p.Amount = parseDecimal(amount)
	return &p, nil
}
