package service

import (
	"context"
	"testing"
	"time"

	"membership_webapp/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeTickets struct {
	perUser map[int64]int64
	tipped  decimal.Decimal
	asked   []time.Time
}

func (f *fakeTickets) Summary(_ context.Context, drawDate time.Time) (*repository.DrawSummary, error) {
	f.asked = append(f.asked, drawDate)
	var total int64
	for _, n := range f.perUser {
		total += n
	}
	return &repository.DrawSummary{DrawDate: drawDate, TotalTickets: total, TotalTipped: f.tipped}, nil
}

func (f *fakeTickets) CountForUser(_ context.Context, userID int64, _ time.Time) (int64, error) {
	return f.perUser[userID], nil
}

func (f *fakeTickets) Holders(context.Context, time.Time, int) ([]repository.Holder, error) {
	return nil, nil
}

func TestJackpotViews(t *testing.T) {
	tickets := &fakeTickets{
		perUser: map[int64]int64{1: 10, 2: 3},
		tipped:  decimal.RequireFromString("13.50"),
	}
	s := NewJackpotService(tickets, time.UTC)
	s.now = func() time.Time { return fixedNow }
	want := time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)

	view, err := s.Current(context.Background())
	require.NoError(t, err)
	require.True(t, view.DrawDate.Equal(want))
	require.Equal(t, int64(13), view.TotalTickets)
	require.True(t, view.TotalTipped.Equal(decimal.RequireFromString("13.5")))

	mine, err := s.ForUser(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), mine.Tickets)
	require.Equal(t, int64(13), mine.TotalTickets)

	mine, err = s.ForUser(context.Background(), 99)
	require.NoError(t, err)
	require.Zero(t, mine.Tickets)

	for _, d := range tickets.asked {
		require.True(t, d.Equal(want))
	}
}
