package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"testing"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ledgerState is everything a settlement can write. It is copied on
// every transaction and savepoint so failures can be rolled back.
type ledgerState struct {
	payments    map[string]*domain.Payment
	tips        []*domain.TipTransaction
	tickets     []domain.TicketBatch
	commissions []*domain.CommissionPayout
	tipEarned   map[int64]decimal.Decimal
	refEarned   map[int64]decimal.Decimal
	notified    []time.Time
}

func (s ledgerState) clone() ledgerState {
	return ledgerState{
		payments:    maps.Clone(s.payments),
		tips:        slices.Clone(s.tips),
		tickets:     slices.Clone(s.tickets),
		commissions: slices.Clone(s.commissions),
		tipEarned:   maps.Clone(s.tipEarned),
		refEarned:   maps.Clone(s.refEarned),
		notified:    slices.Clone(s.notified),
	}
}

type memLedger struct {
	users  map[string]*domain.User
	state  ledgerState
	nextID int64

	// fail names a write that returns errBoom
	fail map[string]bool
}

var errBoom = errors.New("boom")

func newMemLedger(usernames ...string) *memLedger {
	l := &memLedger{
		users: map[string]*domain.User{},
		state: ledgerState{
			payments:  map[string]*domain.Payment{},
			tipEarned: map[int64]decimal.Decimal{},
			refEarned: map[int64]decimal.Decimal{},
		},
		fail: map[string]bool{},
	}
	for _, name := range usernames {
		l.nextID++
		l.users[name] = &domain.User{ID: l.nextID, Username: name}
	}
	return l
}

func (l *memLedger) id() int64 {
	l.nextID++
	return l.nextID
}

func (l *memLedger) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	return l.Savepoint(ctx, fn)
}

func (l *memLedger) Savepoint(_ context.Context, fn func(tx LedgerTx) error) error {
	saved := l.state.clone()
	if err := fn(l); err != nil {
		l.state = saved
		return err
	}
	return nil
}

func (l *memLedger) UserByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := l.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (l *memLedger) CreatePayment(_ context.Context, p *domain.Payment) error {
	if _, ok := l.state.payments[p.ExternalOrderID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = l.id()
	l.state.payments[p.ExternalOrderID] = p
	return nil
}

func (l *memLedger) CreateTip(_ context.Context, t *domain.TipTransaction) error {
	if l.fail["tip"] {
		return errBoom
	}
	t.ID = l.id()
	l.state.tips = append(l.state.tips, t)
	return nil
}

func (l *memLedger) CreateTickets(_ context.Context, b domain.TicketBatch) (int64, error) {
	if l.fail["tickets"] {
		return 0, errBoom
	}
	l.state.tickets = append(l.state.tickets, b)
	return int64(b.Count), nil
}

func (l *memLedger) ticketCount() int {
	n := 0
	for _, b := range l.state.tickets {
		n += b.Count
	}
	return n
}

func (l *memLedger) CreateCommission(_ context.Context, c *domain.CommissionPayout) error {
	c.ID = l.id()
	l.state.commissions = append(l.state.commissions, c)
	return nil
}

func (l *memLedger) AddTipEarnings(_ context.Context, userID int64, amount decimal.Decimal) error {
	if l.fail["tip_earnings"] {
		return errBoom
	}
	l.state.tipEarned[userID] = l.state.tipEarned[userID].Add(amount)
	return nil
}

func (l *memLedger) AddReferralEarnings(_ context.Context, userID int64, amount decimal.Decimal) error {
	if l.fail["referral_earnings"] {
		return errBoom
	}
	l.state.refEarned[userID] = l.state.refEarned[userID].Add(amount)
	return nil
}

func (l *memLedger) NotifyJackpot(_ context.Context, drawDate time.Time) error {
	if l.fail["notify"] {
		return errBoom
	}
	l.state.notified = append(l.state.notified, drawDate)
	return nil
}

// Friday 2026-10-16; the next drawing is Sunday 2026-10-18 21:00 UTC.
var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestTipService(l *memLedger) *TipService {
	s := NewTipService(l, nil, time.UTC)
	s.now = func() time.Time { return fixedNow }
	return s
}

func tipReq(orderID, amount string) TipRequest {
	return TipRequest{
		OrderID:          orderID,
		Amount:           decimal.RequireFromString(amount),
		TippedUsername:   "creator",
		TipperUsername:   "fan",
		ReferrerUsername: "scout",
	}
}

func TestSettleWithReferrer(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	s := newTestTipService(l)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "10.00"))
	require.NoError(t, err)
	require.False(t, out.Duplicate)

	wantDraw := time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)
	require.True(t, out.DrawDate.Equal(wantDraw))
	require.Equal(t, 10, out.TicketsIssued)
	require.Equal(t, "USD", out.Payment.Currency)
	require.Equal(t, "scout", out.Tip.ReferrerUsername)
	require.True(t, out.Tip.ReferrerCommission.Equal(decimal.RequireFromString("2.00")))

	require.NotNil(t, out.Commission)
	require.Equal(t, l.users["scout"].ID, out.Commission.UserID)
	require.Equal(t, out.Payment.ID, out.Commission.SourcePaymentID)
	require.Equal(t, domain.CommissionStatusPending, out.Commission.Status)

	require.Len(t, l.state.tickets, 1)
	batch := l.state.tickets[0]
	require.Equal(t, 10, batch.Count)
	require.Equal(t, l.users["fan"].ID, batch.UserID)
	require.Equal(t, out.Tip.ID, batch.SourceTransactionID)
	require.True(t, batch.DrawDate.Equal(wantDraw))

	require.True(t, l.state.tipEarned[l.users["creator"].ID].Equal(decimal.RequireFromString("10")))
	require.True(t, l.state.refEarned[l.users["scout"].ID].Equal(decimal.RequireFromString("2")))
	require.Len(t, l.state.notified, 1)
}

func TestSettleDuplicateDelivery(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	s := newTestTipService(l)

	_, err := s.Settle(context.Background(), tipReq("ORDER-1", "5"))
	require.NoError(t, err)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "5"))
	require.NoError(t, err)
	require.True(t, out.Duplicate)
	require.Nil(t, out.Tip)

	require.Len(t, l.state.payments, 1)
	require.Len(t, l.state.tips, 1)
	require.Equal(t, 5, l.ticketCount())
	require.Len(t, l.state.commissions, 1)
}

func TestSettleUnknownTippedUser(t *testing.T) {
	l := newMemLedger("fan")
	s := newTestTipService(l)

	_, err := s.Settle(context.Background(), tipReq("ORDER-1", "5"))
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Empty(t, l.state.payments)
}

func TestSettleUnknownReferrerIsDropped(t *testing.T) {
	l := newMemLedger("creator", "fan")
	s := newTestTipService(l)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "10"))
	require.NoError(t, err)
	require.Nil(t, out.Commission)
	require.Empty(t, out.Tip.ReferrerUsername)
	require.True(t, out.Tip.ReferrerCommission.IsZero())
	require.Empty(t, l.state.commissions)
	require.Equal(t, 10, out.TicketsIssued)
}

func TestSettleBelowOneUnitIssuesNoTickets(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	s := newTestTipService(l)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "0.99"))
	require.NoError(t, err)
	require.Zero(t, out.TicketsIssued)
	require.Empty(t, l.state.tickets)
	require.Empty(t, l.state.notified)
	require.True(t, out.Commission.Amount.Equal(decimal.RequireFromString("0.20")))
}

func TestSettleTicketFailureIsSwallowed(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	l.fail["tickets"] = true
	s := newTestTipService(l)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "3"))
	require.NoError(t, err)
	require.Zero(t, out.TicketsIssued)
	require.Equal(t, 3, out.Tip.TicketsGenerated)
	require.Len(t, l.state.tips, 1)
	require.Empty(t, l.state.notified)
	require.NotNil(t, out.Commission)
}

func TestSettleCommissionFailureRollsBackOnlyCommission(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	l.fail["referral_earnings"] = true
	s := newTestTipService(l)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "10"))
	require.NoError(t, err)
	require.Nil(t, out.Commission)
	require.Empty(t, l.state.commissions)
	require.Equal(t, 10, l.ticketCount())
	require.Len(t, l.state.payments, 1)
}

func TestSettleEarningsAndNotifyFailuresAreSwallowed(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	l.fail["tip_earnings"] = true
	l.fail["notify"] = true
	s := newTestTipService(l)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "2"))
	require.NoError(t, err)
	require.Equal(t, 2, out.TicketsIssued)
	require.Empty(t, l.state.tipEarned)
}

func TestSettleRequiredRowFailureAborts(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	l.fail["tip"] = true
	s := newTestTipService(l)

	_, err := s.Settle(context.Background(), tipReq("ORDER-1", "10"))
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, l.state.payments)
}

func TestSettleValidation(t *testing.T) {
	s := newTestTipService(newMemLedger("creator", "fan"))
	ctx := context.Background()

	_, err := s.Settle(ctx, TipRequest{Amount: decimal.NewFromInt(1), TippedUsername: "creator", TipperUsername: "fan"})
	require.ErrorIs(t, err, ErrInvalidInput)

	req := tipReq("ORDER-1", "0")
	_, err = s.Settle(ctx, req)
	require.ErrorIs(t, err, ErrInvalidAmount)

	req = tipReq("ORDER-2", "1")
	req.TippedUsername = "   "
	_, err = s.Settle(ctx, req)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSettleRejectsOutOfRangeAmounts(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	s := newTestTipService(l)
	ctx := context.Background()

	for i, amount := range []string{"5.999", "10000000000", "10000000000000000000", "-4"} {
		_, err := s.Settle(ctx, tipReq(fmt.Sprintf("ORDER-%d", i), amount))
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
	}
	require.Empty(t, l.state.payments)
	require.Empty(t, l.state.tickets)

	out, err := s.Settle(ctx, tipReq("ORDER-MAX", "9999999999.99"))
	require.NoError(t, err)
	require.Equal(t, domain.DefaultTicketCap, out.TicketsIssued)
}

func TestSettleTicketCap(t *testing.T) {
	l := newMemLedger("creator", "fan", "scout")
	s := newTestTipService(l)
	s.SetTicketCap(25)
	s.SetTicketCap(0)

	out, err := s.Settle(context.Background(), tipReq("ORDER-1", "2000000"))
	require.NoError(t, err)
	require.Equal(t, 25, out.TicketsIssued)
	require.Equal(t, 25, out.Tip.TicketsGenerated)
	require.Equal(t, 25, l.ticketCount())
	require.True(t, out.Payment.Amount.Equal(decimal.RequireFromString("2000000")))
	require.True(t, out.Commission.Amount.Equal(decimal.RequireFromString("400000")))
}
