package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentTypeTip         = "tip"

	TicketSourceTip = "tip"

	CommissionTypeReferralTip = "referral_tip"
	CommissionStatusPending   = "pending"
)

// DefaultTicketCap bounds the tickets a single tip can issue.
const DefaultTicketCap = 10000

var (
	// ReferrerCommissionRate is the share of a tip passed to the referrer.
	ReferrerCommissionRate = decimal.RequireFromString("0.20")

	// MaxTipAmount is the largest value a NUMERIC(12,2) column holds.
	MaxTipAmount = decimal.RequireFromString("9999999999.99")
)

// Payment is one captured monetary transaction.
type Payment struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Currency        string          `db:"currency" json:"currency"`
	Status          string          `db:"status" json:"status"`
	PaymentType     string          `db:"payment_type" json:"payment_type"`
	ExternalOrderID string          `db:"external_order_id" json:"external_order_id"`
	CaptureID       string          `db:"capture_id" json:"capture_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// TipTransaction is a tip attributable to a tipper/tipped pair.
type TipTransaction struct {
	ID                 int64           `db:"id" json:"id"`
	PaymentID          int64           `db:"payment_id" json:"payment_id"`
	TipperID           int64           `db:"tipper_id" json:"tipper_id"`
	TippedID           int64           `db:"tipped_id" json:"tipped_id"`
	TippedUsername     string          `db:"tipped_username" json:"tipped_username"`
	Amount             decimal.Decimal `db:"amount" json:"amount"`
	ReferrerUsername   string          `db:"referrer_username" json:"referrer_username,omitempty"`
	ReferrerCommission decimal.Decimal `db:"referrer_commission" json:"referrer_commission"`
	TicketsGenerated   int             `db:"tickets_generated" json:"tickets_generated"`
	CompletedAt        time.Time       `db:"completed_at" json:"completed_at"`
}

// CommissionPayout is a pending referral reward.
type CommissionPayout struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Type            string          `db:"type" json:"type"`
	Status          string          `db:"status" json:"status"`
	SourcePaymentID int64           `db:"source_payment_id" json:"source_payment_id"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// ValidTipAmount reports whether amount is positive, fits the ledger
// columns and has at most two decimal places.
func ValidTipAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() &&
		amount.LessThanOrEqual(MaxTipAmount) &&
		amount.Equal(amount.Truncate(2))
}

// TicketsFor returns floor(amount) in whole currency units, never more
// than limit when limit is positive. Negative amounts earn nothing.
func TicketsFor(amount decimal.Decimal, limit int) int {
	if amount.Sign() <= 0 {
		return 0
	}
	if amount.GreaterThan(MaxTipAmount) {
		amount = MaxTipAmount
	}
	n := amount.Floor().IntPart()
	if limit > 0 && n > int64(limit) {
		return limit
	}
	return int(n)
}

// CommissionFor returns the referrer share of amount, rounded to cents,
// or zero when there is no referrer.
func CommissionFor(amount decimal.Decimal, hasReferrer bool) decimal.Decimal {
	if !hasReferrer || amount.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.Mul(ReferrerCommissionRate).Round(2)
}

// TicketBatch describes Count single-count tickets issued by one tip.
// It is expanded into rows by the database.
type TicketBatch struct {
	UserID              int64
	SourceTransactionID int64
	Source              string
	Count               int
	DrawDate            time.Time
}

func NewTicketBatch(userID, tipID int64, count int, drawDate time.Time) TicketBatch {
	return TicketBatch{
		UserID:              userID,
		SourceTransactionID: tipID,
		Source:              TicketSourceTip,
		Count:               count,
		DrawDate:            drawDate,
	}
}
