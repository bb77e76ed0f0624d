package badge

// Progress is a user's counters as consumed by the evaluator. How the
// completed-chore count is obtained is the chore repository's concern.
type Progress struct {
	CompletedChores int
	TotalPoints     int
	earned          map[string]bool
}

// NewProgress builds a Progress snapshot from a user's counters and earned
// badge keys.
func NewProgress(completedChores, totalPoints int, earned []string) Progress {
	m := make(map[string]bool, len(earned))
	for _, key := range earned {
		m[key] = true
	}
	return Progress{
		CompletedChores: completedChores,
		TotalPoints:     totalPoints,
		earned:          m,
	}
}

// Earned reports whether the badge key is already held.
func (p Progress) Earned(key string) bool {
	return p.earned[key]
}

func (p Progress) metric(m Metric) int {
	switch m {
	case MetricTotalPoints:
		return p.TotalPoints
	default:
		return p.CompletedChores
	}
}

// Evaluate returns the catalog badges the user newly qualifies for, excluding
// any already earned. Evaluating the same progress twice never re-awards.
func Evaluate(p Progress) []Definition {
	var newly []Definition
	for _, d := range catalog {
		if p.Earned(d.Key) {
			continue
		}
		if p.metric(d.Metric) >= d.Threshold {
			newly = append(newly, d)
		}
	}
	return newly
}

// Fraction returns how close the user is to the badge, in [0, 1].
// An earned badge is always 1.
func Fraction(d Definition, p Progress) float64 {
	if p.Earned(d.Key) {
		return 1
	}
	if d.Threshold <= 0 {
		return 1
	}
	f := float64(p.metric(d.Metric)) / float64(d.Threshold)
	if f > 1 {
		f = 1
	}
	return f
}
