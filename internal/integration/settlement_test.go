package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSettleAgainstPostgres(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	creator := createUser(t, users, uniq("creator"))
	fan := createUser(t, users, uniq("fan"))
	scout := createUser(t, users, uniq("scout"))

	tips := service.NewTipService(service.NewPgLedger(db), service.NewAuditService(db), time.UTC)
	orderID := uniq("ORDER")

	req := service.TipRequest{
		OrderID:          orderID,
		CaptureID:        "CAP-" + orderID,
		Amount:           decimal.RequireFromString("10.00"),
		TippedUsername:   creator.Username,
		TipperUsername:   fan.Username,
		ReferrerUsername: scout.Username,
	}

	st, err := tips.Settle(ctx, req)
	require.NoError(t, err)
	require.False(t, st.Duplicate)
	require.Equal(t, 10, st.TicketsIssued)
	require.NotNil(t, st.Commission)

	again, err := tips.Settle(ctx, req)
	require.NoError(t, err)
	require.True(t, again.Duplicate)

	payment, err := repository.NewPaymentRepository(db).GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, st.Payment.ID, payment.ID)
	require.Equal(t, fan.ID, payment.UserID)

	tickets, err := repository.NewTicketRepository(db).CountForUser(ctx, fan.ID, st.DrawDate)
	require.NoError(t, err)
	require.Equal(t, int64(10), tickets)

	got, err := users.GetByID(ctx, creator.ID)
	require.NoError(t, err)
	require.True(t, got.TipEarnings.Equal(decimal.RequireFromString("10")))

	got, err = users.GetByID(ctx, scout.ID)
	require.NoError(t, err)
	require.True(t, got.ReferralEarnings.Equal(decimal.RequireFromString("2")))

	received, err := repository.NewTipRepository(db).ListByTipped(ctx, creator.ID, 10)
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, scout.Username, received[0].ReferrerUsername)
}

func TestConcurrentDeliveriesSettleOnce(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	creator := createUser(t, users, uniq("creator"))
	fan := createUser(t, users, uniq("fan"))

	tips := service.NewTipService(service.NewPgLedger(db), nil, time.UTC)
	req := service.TipRequest{
		OrderID:        uniq("ORDER"),
		Amount:         decimal.RequireFromString("3.00"),
		TippedUsername: creator.Username,
		TipperUsername: fan.Username,
	}

	const deliveries = 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
		dupes   int
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := tips.Settle(ctx, req)
			if err != nil {
				t.Errorf("settle: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if st.Duplicate {
				dupes++
			} else {
				settled++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, settled)
	require.Equal(t, deliveries-1, dupes)

	got, err := users.GetByID(ctx, creator.ID)
	require.NoError(t, err)
	require.True(t, got.TipEarnings.Equal(decimal.RequireFromString("3")))
}

func TestLargeTipIssuesCappedTicketRows(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	creator := createUser(t, users, uniq("creator"))
	fan := createUser(t, users, uniq("fan"))

	tips := service.NewTipService(service.NewPgLedger(db), nil, time.UTC)
	tips.SetTicketCap(40)

	st, err := tips.Settle(ctx, service.TipRequest{
		OrderID:        uniq("ORDER"),
		Amount:         decimal.RequireFromString("250.00"),
		TippedUsername: creator.Username,
		TipperUsername: fan.Username,
	})
	require.NoError(t, err)
	require.Equal(t, 40, st.TicketsIssued)

	var rows int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT COUNT(*) FROM jackpot_tickets WHERE source_transaction_id = $1 AND count = 1`, st.Tip.ID,
	).Scan(&rows))
	require.Equal(t, 40, rows)
}
