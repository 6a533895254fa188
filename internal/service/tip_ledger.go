package service

import (
	"context"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TipLedger runs a settlement inside one database transaction.
type TipLedger interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of writes a settlement performs. Lookups return
// repository.ErrNotFound and CreatePayment returns repository.ErrDuplicate
// when the external order id was already recorded.
type LedgerTx interface {
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreatePayment(ctx context.Context, p *domain.Payment) error
	CreateTip(ctx context.Context, t *domain.TipTransaction) error
	CreateTickets(ctx context.Context, b domain.TicketBatch) (int64, error)
	CreateCommission(ctx context.Context, c *domain.CommissionPayout) error
	AddTipEarnings(ctx context.Context, userID int64, amount decimal.Decimal) error
	AddReferralEarnings(ctx context.Context, userID int64, amount decimal.Decimal) error
	NotifyJackpot(ctx context.Context, drawDate time.Time) error

	// Savepoint runs fn in a nested transaction. An error from fn rolls
	// back only the nested part and is returned to the caller.
	Savepoint(ctx context.Context, fn func(tx LedgerTx) error) error
}

type pgLedger struct {
	db          *pgxpool.Pool
	users       *repository.UserRepository
	payments    *repository.PaymentRepository
	tips        *repository.TipRepository
	tickets     *repository.TicketRepository
	commissions *repository.CommissionRepository
}

// NewPgLedger returns the Postgres-backed TipLedger.
func NewPgLedger(db *pgxpool.Pool) TipLedger {
	return &pgLedger{
		db:          db,
		users:       repository.NewUserRepository(db),
		payments:    repository.NewPaymentRepository(db),
		tips:        repository.NewTipRepository(db),
		tickets:     repository.NewTicketRepository(db),
		commissions: repository.NewCommissionRepository(db),
	}
}

func (l *pgLedger) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgLedgerTx{ledger: l, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgLedgerTx struct {
	ledger *pgLedger
	tx     pgx.Tx
}

func (t *pgLedgerTx) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return t.ledger.users.GetByUsernameTx(ctx, t.tx, username)
}

func (t *pgLedgerTx) CreatePayment(ctx context.Context, p *domain.Payment) error {
	return t.ledger.payments.CreateWithTx(ctx, t.tx, p)
}

func (t *pgLedgerTx) CreateTip(ctx context.Context, tip *domain.TipTransaction) error {
	return t.ledger.tips.CreateWithTx(ctx, t.tx, tip)
}

func (t *pgLedgerTx) CreateTickets(ctx context.Context, b domain.TicketBatch) (int64, error) {
	return t.ledger.tickets.CreateBatchWithTx(ctx, t.tx, b)
}

func (t *pgLedgerTx) CreateCommission(ctx context.Context, c *domain.CommissionPayout) error {
	return t.ledger.commissions.CreateWithTx(ctx, t.tx, c)
}

func (t *pgLedgerTx) AddTipEarnings(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return t.ledger.users.AddTipEarningsTx(ctx, t.tx, userID, amount)
}

func (t *pgLedgerTx) AddReferralEarnings(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return t.ledger.users.AddReferralEarningsTx(ctx, t.tx, userID, amount)
}

// NotifyJackpot queues a NOTIFY that Postgres delivers only if the
// surrounding transaction commits.
func (t *pgLedgerTx) NotifyJackpot(ctx context.Context, drawDate time.Time) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_notify($1, $2)`, domain.JackpotChannel, drawDate.UTC().Format(time.RFC3339))
	return err
}

func (t *pgLedgerTx) Savepoint(ctx context.Context, fn func(tx LedgerTx) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sp.Rollback(ctx) }()

	if err := fn(&pgLedgerTx{ledger: t.ledger, tx: sp}); err != nil {
		return err
	}
	return sp.Commit(ctx)
}
