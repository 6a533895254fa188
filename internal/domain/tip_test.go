package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTicketsFor(t *testing.T) {
	cases := map[string]int{
		"0":      0,
		"0.99":   0,
		"1":      1,
		"1.50":   1,
		"10.00":  10,
		"25.999": 25,
		"-3":     0,
	}
	for in, want := range cases {
		require.Equal(t, want, TicketsFor(decimal.RequireFromString(in), 0), "amount %s", in)
	}
}

func TestTicketsForLimitAndOverflow(t *testing.T) {
	require.Equal(t, 100, TicketsFor(decimal.RequireFromString("2000000"), 100))
	require.Equal(t, 5, TicketsFor(decimal.RequireFromString("5"), 100))

	// far beyond int64 once floored; clamps instead of wrapping negative
	huge := decimal.RequireFromString("10000000000000000000")
	require.Equal(t, 9999999999, TicketsFor(huge, 0))
	require.Equal(t, DefaultTicketCap, TicketsFor(huge, DefaultTicketCap))
}

func TestValidTipAmount(t *testing.T) {
	for _, in := range []string{"0.01", "5", "5.90", "9999999999.99"} {
		require.True(t, ValidTipAmount(decimal.RequireFromString(in)), in)
	}
	for _, in := range []string{"0", "-1", "5.999", "0.001", "10000000000", "10000000000000000000"} {
		require.False(t, ValidTipAmount(decimal.RequireFromString(in)), in)
	}
}

func TestCommissionFor(t *testing.T) {
	require.True(t, CommissionFor(decimal.RequireFromString("10"), true).Equal(decimal.RequireFromString("2.00")))
	require.True(t, CommissionFor(decimal.RequireFromString("7.77"), true).Equal(decimal.RequireFromString("1.55")))
	require.True(t, CommissionFor(decimal.RequireFromString("10"), false).IsZero())
	require.True(t, CommissionFor(decimal.Zero, true).IsZero())
}

func TestNewTicketBatch(t *testing.T) {
	draw := time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)

	b := NewTicketBatch(7, 42, 3, draw)
	require.Equal(t, int64(7), b.UserID)
	require.Equal(t, int64(42), b.SourceTransactionID)
	require.Equal(t, 3, b.Count)
	require.Equal(t, TicketSourceTip, b.Source)
	require.True(t, b.DrawDate.Equal(draw))
}
