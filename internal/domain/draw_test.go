package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextDrawDate(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"friday", time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)},
		{"saturday night", time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC), time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)},
		{"sunday before draw", time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC), time.Date(2026, 10, 25, 21, 0, 0, 0, time.UTC)},
		{"sunday after draw", time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC), time.Date(2026, 10, 25, 21, 0, 0, 0, time.UTC)},
		{"monday", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 25, 21, 0, 0, 0, time.UTC)},
		{"month rollover", time.Date(2026, 10, 29, 8, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 21, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextDrawDate(tc.now, time.UTC)
			require.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
			require.Equal(t, time.Sunday, got.Weekday())
		})
	}
}

func TestNextDrawDateUsesDrawLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)

	// Monday 02:00 UTC is still Sunday evening in EST.
	now := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)
	got := NextDrawDate(now, est)

	require.Equal(t, est, got.Location())
	require.True(t, got.Equal(time.Date(2026, 10, 25, 21, 0, 0, 0, est)))
}

func TestNextDrawDateNilLocation(t *testing.T) {
	got := NextDrawDate(time.Now(), nil)
	require.Equal(t, time.Local, got.Location())
	require.Equal(t, DrawHour, got.Hour())
}
