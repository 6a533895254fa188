package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/metrics"
	"membership_webapp/internal/repository"

	"github.com/shopspring/decimal"
)

// TipRequest is a captured tip as reported by the payment processor.
type TipRequest struct {
	OrderID          string
	CaptureID        string
	Amount           decimal.Decimal
	Currency         string
	TippedUsername   string
	TipperUsername   string
	ReferrerUsername string
}

// Settlement describes what a tip produced.
type Settlement struct {
	Duplicate     bool                     `json:"duplicate"`
	Payment       *domain.Payment          `json:"payment,omitempty"`
	Tip           *domain.TipTransaction   `json:"tip,omitempty"`
	TicketsIssued int                      `json:"tickets_issued"`
	DrawDate      time.Time                `json:"draw_date"`
	Commission    *domain.CommissionPayout `json:"commission,omitempty"`
}

var errAlreadySettled = errors.New("order already settled")

// TipService turns captured tips into ledger rows, jackpot tickets and
// referral commissions.
type TipService struct {
	ledger    TipLedger
	audit     *AuditService
	drawLoc   *time.Location
	ticketCap int
	now       func() time.Time
}

func NewTipService(ledger TipLedger, audit *AuditService, drawLoc *time.Location) *TipService {
	return &TipService{
		ledger:    ledger,
		audit:     audit,
		drawLoc:   drawLoc,
		ticketCap: domain.DefaultTicketCap,
		now:       time.Now,
	}
}

// SetTicketCap limits the tickets one tip can issue. Non-positive values
// keep the current cap.
func (s *TipService) SetTicketCap(n int) {
	if n > 0 {
		s.ticketCap = n
	}
}

// Settle records the tip in one transaction. The payment and tip rows
// must both be written or the call fails. Tickets, the commission, the
// earnings counters and the feed notification are best effort: each runs
// under its own savepoint and a failure there is logged and skipped.
//
// A second delivery for an already recorded order id writes nothing and
// returns a Settlement with Duplicate set.
func (s *TipService) Settle(ctx context.Context, req TipRequest) (*Settlement, error) {
	req.TippedUsername = strings.TrimSpace(req.TippedUsername)
	req.TipperUsername = strings.TrimSpace(req.TipperUsername)
	req.ReferrerUsername = strings.TrimSpace(req.ReferrerUsername)

	if req.OrderID == "" || req.TippedUsername == "" || req.TipperUsername == "" {
		return nil, fmt.Errorf("%w: order id, tipped and tipper are required", ErrInvalidInput)
	}
	if !domain.ValidTipAmount(req.Amount) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount.String())
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	log := logger.WithContext(ctx).With("order_id", req.OrderID)

	out := &Settlement{DrawDate: domain.NextDrawDate(s.now(), s.drawLoc)}
	ticketCount := domain.TicketsFor(req.Amount, s.ticketCap)
	if ticketCount < domain.TicketsFor(req.Amount, 0) {
		log.Warn("ticket cap reached", "amount", req.Amount.String(), "tickets", ticketCount)
	}

	err := s.ledger.InTx(ctx, func(tx LedgerTx) error {
		tipped, err := resolveUser(ctx, tx, req.TippedUsername)
		if err != nil {
			return fmt.Errorf("tipped user %q: %w", req.TippedUsername, err)
		}
		tipper, err := resolveUser(ctx, tx, req.TipperUsername)
		if err != nil {
			return fmt.Errorf("tipper %q: %w", req.TipperUsername, err)
		}

		var referrer *domain.User
		if req.ReferrerUsername != "" {
			referrer, err = resolveUser(ctx, tx, req.ReferrerUsername)
			if errors.Is(err, ErrUserNotFound) {
				log.Warn("referrer not found, settling without commission", "referrer", req.ReferrerUsername)
				referrer, err = nil, nil
			}
			if err != nil {
				return err
			}
		}

		commission := domain.CommissionFor(req.Amount, referrer != nil)

		payment := &domain.Payment{
			UserID:          tipper.ID,
			Amount:          req.Amount,
			Currency:        req.Currency,
			Status:          domain.PaymentStatusCompleted,
			PaymentType:     domain.PaymentTypeTip,
			ExternalOrderID: req.OrderID,
			CaptureID:       req.CaptureID,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errAlreadySettled
			}
			return fmt.Errorf("create payment: %w", err)
		}

		tip := &domain.TipTransaction{
			PaymentID:          payment.ID,
			TipperID:           tipper.ID,
			TippedID:           tipped.ID,
			TippedUsername:     tipped.Username,
			Amount:             req.Amount,
			ReferrerCommission: commission,
			TicketsGenerated:   ticketCount,
		}
		if referrer != nil {
			tip.ReferrerUsername = referrer.Username
		}
		if err := tx.CreateTip(ctx, tip); err != nil {
			return fmt.Errorf("create tip transaction: %w", err)
		}

		out.Payment = payment
		out.Tip = tip

		if ticketCount > 0 {
			batch := domain.NewTicketBatch(tipper.ID, tip.ID, ticketCount, out.DrawDate)
			err := tx.Savepoint(ctx, func(sp LedgerTx) error {
				_, err := sp.CreateTickets(ctx, batch)
				return err
			})
			if err != nil {
				skipped(log, "tickets", err, "tickets", ticketCount)
			} else {
				out.TicketsIssued = ticketCount
			}
		}

		if referrer != nil && commission.IsPositive() {
			err := tx.Savepoint(ctx, func(sp LedgerTx) error {
				// the referrer is resolved again inside the savepoint
				ref, err := sp.UserByUsername(ctx, referrer.Username)
				if err != nil {
					return err
				}
				payout := &domain.CommissionPayout{
					UserID:          ref.ID,
					Amount:          commission,
					Type:            domain.CommissionTypeReferralTip,
					Status:          domain.CommissionStatusPending,
					SourcePaymentID: payment.ID,
				}
				if err := sp.CreateCommission(ctx, payout); err != nil {
					return err
				}
				if err := sp.AddReferralEarnings(ctx, ref.ID, commission); err != nil {
					return err
				}
				out.Commission = payout
				return nil
			})
			if err != nil {
				out.Commission = nil
				skipped(log, "commission", err, "referrer", referrer.Username)
			}
		}

		if err := tx.Savepoint(ctx, func(sp LedgerTx) error {
			return sp.AddTipEarnings(ctx, tipped.ID, req.Amount)
		}); err != nil {
			skipped(log, "tip_earnings", err, "tipped", tipped.Username)
		}

		if out.TicketsIssued > 0 {
			if err := tx.Savepoint(ctx, func(sp LedgerTx) error {
				return sp.NotifyJackpot(ctx, out.DrawDate)
			}); err != nil {
				skipped(log, "notify", err)
			}
		}

		return nil
	})

	if errors.Is(err, errAlreadySettled) {
		log.Info("duplicate tip delivery ignored")
		s.audit.Log(ctx, 0, domain.AuditActionTipDuplicate, domain.AuditCategoryPayment, map[string]interface{}{
			"order_id": req.OrderID,
		})
		return &Settlement{Duplicate: true, DrawDate: out.DrawDate}, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.TipsSettled.Inc()
	metrics.TicketsIssued.Add(float64(out.TicketsIssued))
	log.Info("tip settled",
		"tip_id", out.Tip.ID,
		"amount", req.Amount.String(),
		"tickets", out.TicketsIssued,
		"commission", out.Tip.ReferrerCommission.String(),
	)
	s.audit.LogTip(ctx, out)

	return out, nil
}

func resolveUser(ctx context.Context, tx LedgerTx, username string) (*domain.User, error) {
	u, err := tx.UserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func skipped(log *slog.Logger, step string, err error, args ...any) {
	metrics.SettlementPartialFailures.WithLabelValues(step).Inc()
	log.Error("settlement step skipped", append([]any{"step", step, "error", err}, args...)...)
}
