package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rules are stored as RRULE-style strings, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE" or "FREQ=MONTHLY;BYMONTHDAY=31".

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Parse parses a rule string into a validated Rule.
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("%w: empty rule", ErrInvalidPattern)
	}

	var (
		freq       string
		interval   = 1
		byDay      []time.Weekday
		byMonthDay int
		until      *time.Time
	)

	for _, part := range strings.Split(rule, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("%w: invalid rule part %q", ErrInvalidPattern, part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			switch val {
			case "DAILY", "WEEKLY", "MONTHLY":
				freq = val
			default:
				return Rule{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidPattern, val)
			}

		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return Rule{}, fmt.Errorf("%w: invalid interval %q", ErrInvalidPattern, val)
			}
			interval = n

		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("%w: unknown day %q", ErrInvalidPattern, d)
				}
				byDay = append(byDay, wd)
			}

		case "BYMONTHDAY":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > 31 {
				return Rule{}, fmt.Errorf("%w: invalid BYMONTHDAY %q", ErrInvalidPattern, val)
			}
			byMonthDay = n

		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", val)
			if err != nil {
				t, err = time.Parse("20060102", val)
				if err != nil {
					return Rule{}, fmt.Errorf("%w: invalid UNTIL %q", ErrInvalidPattern, val)
				}
			}
			until = &t

		default:
			return Rule{}, fmt.Errorf("%w: unsupported rule key %q", ErrInvalidPattern, key)
		}
	}

	var pattern Pattern
	switch freq {
	case "":
		return Rule{}, fmt.Errorf("%w: FREQ is required", ErrInvalidPattern)
	case "DAILY":
		if byDay != nil || byMonthDay != 0 {
			return Rule{}, fmt.Errorf("%w: BYDAY/BYMONTHDAY not valid for DAILY", ErrInvalidPattern)
		}
		pattern = Daily{Interval: interval}
	case "WEEKLY":
		if byMonthDay != 0 {
			return Rule{}, fmt.Errorf("%w: BYMONTHDAY not valid for WEEKLY", ErrInvalidPattern)
		}
		pattern = Weekly{Interval: interval, Days: byDay}
	case "MONTHLY":
		if byDay != nil {
			return Rule{}, fmt.Errorf("%w: BYDAY not valid for MONTHLY", ErrInvalidPattern)
		}
		pattern = Monthly{Interval: interval, DayOfMonth: byMonthDay}
	}

	r := Rule{Pattern: pattern, Until: until}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// String serializes the rule back to an RRULE string.
func (r Rule) String() string {
	if r.Pattern == nil {
		return ""
	}
	parts := r.Pattern.encode()
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.Format("20060102T150405Z"))
	}
	return strings.Join(parts, ";")
}

func (p Daily) encode() []string {
	parts := []string{"FREQ=DAILY"}
	if p.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", p.Interval))
	}
	return parts
}

func (p Weekly) encode() []string {
	parts := []string{"FREQ=WEEKLY"}
	if p.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", p.Interval))
	}
	if len(p.Days) > 0 {
		var days []string
		for _, d := range p.Days {
			days = append(days, dayAbbrev[d])
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	return parts
}

func (p Monthly) encode() []string {
	parts := []string{"FREQ=MONTHLY"}
	if p.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", p.Interval))
	}
	if p.DayOfMonth > 0 {
		parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", p.DayOfMonth))
	}
	return parts
}

// NextAfter parses a stored rule string and computes the occurrence strictly
// after anchor. A nil result with a nil error means the rule has ended.
func NextAfter(rule string, anchor time.Time) (*time.Time, error) {
	r, err := Parse(rule)
	if err != nil {
		return nil, err
	}
	return r.Next(anchor)
}
