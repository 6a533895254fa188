package domain

import "time"

const (
	DrawWeekday = time.Sunday
	DrawHour    = 21

	// JackpotChannel is the Postgres NOTIFY channel announcing new tickets.
	JackpotChannel = "jackpot_updates"
)

// NextDrawDate returns the next Sunday 21:00 in loc strictly after the
// current day. On a Sunday the draw is a week away, even before 21:00.
func NextDrawDate(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	days := (int(DrawWeekday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), DrawHour, 0, 0, 0, loc)
}
