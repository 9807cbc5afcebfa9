package intent

// Intent is the coarse-grained operation a query requests.
type Intent string

// The closed set of intents the executor dispatches on.
const (
	TotalSpend       Intent = "total_spend"
	ListTransactions Intent = "list_transactions"
	TopCategory      Intent = "top_category"
	ComparePeriods   Intent = "compare_periods"
	AverageSpend     Intent = "average_spend"
)

// Valid reports whether the label is in the closed intent set.
func (i Intent) Valid() bool {
	switch i {
	case TotalSpend, ListTransactions, TopCategory, ComparePeriods, AverageSpend:
		return true
	}
	return false
}

// Template maps an intent label to its example phrases.
type Template struct {
	Intent  Intent
	Phrases []string
}

// Prediction is a classified intent with its similarity score.
type Prediction struct {
	Intent Intent  `json:"intent"`
	Score  float64 `json:"score"`
}
