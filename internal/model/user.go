package model

import "time"

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	HasPIN        bool      `json:"has_pin"`
	TotalPoints   int       `json:"total_points"`
	WeeklyPoints  int       `json:"weekly_points"`
	MonthlyPoints int       `json:"monthly_points"`
	// WeekStart and MonthStart mark the period the weekly/monthly counters
	// cover. Stale markers trigger a lazy reset on the next credit.
	WeekStart  time.Time `json:"week_start"`
	MonthStart time.Time `json:"month_start"`
	// Badges holds earned badge keys. Append-only; a badge is never removed.
	Badges    []string  `json:"badges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasBadge reports whether the user already earned the given badge key.
func (u User) HasBadge(key string) bool {
	for _, b := range u.Badges {
		if b == key {
			return true
		}
	}
	return false
}
