package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPattern is returned for patterns that cannot produce occurrences,
// such as a non-positive interval or a day-of-month outside 1-31.
var ErrInvalidPattern = errors.New("invalid recurrence pattern")

// Pattern is one of the three supported recurrence variants. Each variant
// carries only the parameters that apply to it.
type Pattern interface {
	// next returns the first occurrence strictly after anchor.
	next(anchor time.Time) time.Time
	Validate() error
	Describe() string
	encode() []string
}

// Daily repeats every Interval days.
type Daily struct {
	Interval int
}

// Weekly repeats on the given weekdays. When Days is empty the occurrence
// simply advances Interval weeks from the anchor. When Days is set, the
// remaining matching days of the anchor's week are used first; once the week
// is exhausted, Interval-1 further weeks are skipped before resuming.
type Weekly struct {
	Interval int
	Days     []time.Weekday
}

// Monthly repeats on DayOfMonth every Interval months. DayOfMonth 0 keeps the
// anchor's day. Days past the end of a month clamp to the month's last day.
type Monthly struct {
	Interval   int
	DayOfMonth int
}

// Rule pairs a pattern with an optional end date. Occurrences past Until are
// not generated.
type Rule struct {
	Pattern Pattern
	Until   *time.Time
}

// Next returns the occurrence strictly after anchor, or nil when the rule has
// ended. The returned date keeps the anchor's time of day and location.
func (r Rule) Next(anchor time.Time) (*time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	n := r.Pattern.next(anchor)
	if r.Until != nil && n.After(*r.Until) {
		return nil, nil
	}
	return &n, nil
}

func (r Rule) Validate() error {
	if r.Pattern == nil {
		return fmt.Errorf("%w: missing pattern", ErrInvalidPattern)
	}
	return r.Pattern.Validate()
}

func (p Daily) Validate() error {
	if p.Interval < 1 {
		return fmt.Errorf("%w: interval %d", ErrInvalidPattern, p.Interval)
	}
	return nil
}

func (p Daily) next(anchor time.Time) time.Time {
	return anchor.AddDate(0, 0, p.Interval)
}

func (p Daily) Describe() string {
	if p.Interval > 1 {
		return fmt.Sprintf("Repeats every %d days", p.Interval)
	}
	return "Repeats daily"
}

func (p Weekly) Validate() error {
	if p.Interval < 1 {
		return fmt.Errorf("%w: interval %d", ErrInvalidPattern, p.Interval)
	}
	for _, d := range p.Days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: weekday %d", ErrInvalidPattern, d)
		}
	}
	return nil
}

func (p Weekly) next(anchor time.Time) time.Time {
	if len(p.Days) == 0 {
		return anchor.AddDate(0, 0, 7*p.Interval)
	}

	// Remaining matching days in the anchor's week (weeks start Monday).
	ws := weekStart(anchor)
	for off := 1; off <= 6; off++ {
		cand := anchor.AddDate(0, 0, off)
		if !weekStart(cand).Equal(ws) {
			break
		}
		if p.onDay(cand.Weekday()) {
			return cand
		}
	}

	// Week exhausted: skip ahead Interval weeks, resume at the first match.
	base := ws.AddDate(0, 0, 7*p.Interval)
	for off := 0; off < 7; off++ {
		cand := base.AddDate(0, 0, off)
		if p.onDay(cand.Weekday()) {
			return withClock(cand, anchor)
		}
	}
	return withClock(base, anchor)
}

func (p Weekly) onDay(d time.Weekday) bool {
	for _, day := range p.Days {
		if day == d {
			return true
		}
	}
	return false
}

func (p Weekly) Describe() string {
	prefix := "Repeats weekly"
	if p.Interval == 2 {
		prefix = "Repeats every 2 weeks"
	} else if p.Interval > 2 {
		prefix = fmt.Sprintf("Repeats every %d weeks", p.Interval)
	}
	if len(p.Days) == 0 {
		return prefix
	}
	var names []string
	for _, d := range p.Days {
		names = append(names, d.String()[:3])
	}
	return prefix + " on " + strings.Join(names, ", ")
}

func (p Monthly) Validate() error {
	if p.Interval < 1 {
		return fmt.Errorf("%w: interval %d", ErrInvalidPattern, p.Interval)
	}
	if p.DayOfMonth < 0 || p.DayOfMonth > 31 {
		return fmt.Errorf("%w: day of month %d", ErrInvalidPattern, p.DayOfMonth)
	}
	return nil
}

func (p Monthly) next(anchor time.Time) time.Time {
	day := p.DayOfMonth
	if day == 0 {
		day = anchor.Day()
	}

	year, month, _ := anchor.Date()
	first := time.Date(year, month+time.Month(p.Interval), 1, 0, 0, 0, 0, anchor.Location())

	// Clamp to the target month's length: day 31 in a 30-day month lands on 30.
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(
		first.Year(), first.Month(), day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0,
		anchor.Location(),
	)
}

func (p Monthly) Describe() string {
	if p.Interval > 1 {
		return fmt.Sprintf("Repeats every %d months", p.Interval)
	}
	return "Repeats monthly"
}

// weekStart returns the Monday at midnight of the week containing t.
func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// withClock returns d's date with src's time of day.
func withClock(d, src time.Time) time.Time {
	return time.Date(
		d.Year(), d.Month(), d.Day(),
		src.Hour(), src.Minute(), src.Second(), 0,
		src.Location(),
	)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
