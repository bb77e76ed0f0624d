package badge

// Metric selects which progress counter a badge threshold applies to.
type Metric string

const (
	MetricCompletedChores Metric = "completed_chores"
	MetricTotalPoints     Metric = "total_points"
)

// Definition is a static achievement definition. The catalog is seeded at
// build time and identical for every household.
type Definition struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Metric      Metric `json:"metric"`
	Threshold   int    `json:"threshold"`
}

var catalog = []Definition{
	{
		Key:         "first_chore",
		Name:        "First Chore",
		Description: "Complete your first chore",
		Icon:        "🌱",
		Metric:      MetricCompletedChores,
		Threshold:   1,
	},
	{
		Key:         "ten_chores",
		Name:        "Ten Chores",
		Description: "Complete ten chores",
		Icon:        "⭐",
		Metric:      MetricCompletedChores,
		Threshold:   10,
	},
	{
		Key:         "fifty_chores",
		Name:        "Fifty Chores",
		Description: "Complete fifty chores",
		Icon:        "🏆",
		Metric:      MetricCompletedChores,
		Threshold:   50,
	},
	{
		Key:         "point_collector",
		Name:        "Point Collector",
		Description: "Earn 500 points all-time",
		Icon:        "💎",
		Metric:      MetricTotalPoints,
		Threshold:   500,
	},
}

// Catalog returns the badge definitions. Returning a copy keeps callers from
// mutating the seed data.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the definition for a badge key.
func Lookup(key string) (Definition, bool) {
	for _, d := range catalog {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}
