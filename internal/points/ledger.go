package points

import (
	"errors"
	"time"

	"github.com/dukerupert/chorewheel/internal/model"
)

// ErrInvalidPoints is returned when a negative credit is requested.
var ErrInvalidPoints = errors.New("point credit must not be negative")

// Credit applies a point credit to the user at the given time and returns the
// updated user. The all-time total always accumulates; the weekly and monthly
// counters reset lazily when the stored period marker is older than the
// current period. A zero credit is a no-op. The caller persists the result.
func Credit(u model.User, pts int, now time.Time) (model.User, error) {
	if pts < 0 {
		return u, ErrInvalidPoints
	}
	if pts == 0 {
		return u, nil
	}

	ws := WeekStart(now)
	ms := MonthStart(now)

	if u.WeekStart.Before(ws) {
		// The stored week has passed: the counter restarts at this credit.
		u.WeeklyPoints = pts
	} else {
		u.WeeklyPoints += pts
	}
	if u.MonthStart.Before(ms) {
		u.MonthlyPoints = pts
	} else {
		u.MonthlyPoints += pts
	}

	u.WeekStart = ws
	u.MonthStart = ms
	u.TotalPoints += pts
	return u, nil
}

// WeekStart returns the Monday at midnight of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first day of t's month at midnight.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
