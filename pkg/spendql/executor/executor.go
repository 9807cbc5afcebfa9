// Package executor turns an interpreted query (intent, entities, date
// range) into a result over a transaction table. Execution is pure:
// the input table is never mutated, every filter works on a private
// working copy.
package executor

import (
	"fmt"
	"sort"
	"time"

	"github.com/cognicore/spendql/pkg/spendql/daterange"
	"github.com/cognicore/spendql/pkg/spendql/entities"
	"github.com/cognicore/spendql/pkg/spendql/intent"
	"github.com/cognicore/spendql/pkg/spendql/internalerr"
	"github.com/cognicore/spendql/pkg/spendql/store"
)

// Row is one listed transaction. Description is deliberately absent:
// listing answers "what did I spend where", not "why".
type Row struct {
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Merchant string    `json:"merchant"`
}

// Result carries the outcome of one execution. Only the field matching
// the intent is populated; Value picks it out.
type Result struct {
	Intent intent.Intent

	Total          int64
	Average        float64
	Transactions   []Row
	TopCategory    string
	HasTopCategory bool
	Comparison     map[string]int64
}

// Value returns the intent-shaped payload: an integer for total_spend,
// a float for average_spend, a row list for list_transactions, a label
// (or nil) for top_category, and a month->sum map for compare_periods.
func (r Result) Value() any {
	switch r.Intent {
	case intent.TotalSpend:
		return r.Total
	case intent.AverageSpend:
		return r.Average
	case intent.ListTransactions:
		return r.Transactions
	case intent.TopCategory:
		if !r.HasTopCategory {
			return nil
		}
		return r.TopCategory
	case intent.ComparePeriods:
		return r.Comparison
	}
	return nil
}

// Execute filters the dataset by the resolved date range and entities,
// then dispatches on intent. An intent outside the closed set is a
// contract violation and fails hard.
func Execute(in intent.Intent, ents entities.Set, dr daterange.Range, dataset []store.Transaction) (Result, error) {
	working := filter(dataset, ents, dr)

	res := Result{Intent: in}
	switch in {
	case intent.TotalSpend:
		res.Total = int64(sumAmount(working))

	case intent.ListTransactions:
		res.Transactions = make([]Row, len(working))
		for i, t := range working {
			res.Transactions[i] = Row{
				Date:     t.Date,
				Amount:   t.Amount,
				Category: t.Category,
				Merchant: t.Merchant,
			}
		}

	case intent.AverageSpend:
		// Zero on empty: callers get a number, not an undefined value.
		if len(working) > 0 {
			res.Average = sumAmount(working) / float64(len(working))
		}

	case intent.TopCategory:
		res.TopCategory, res.HasTopCategory = topCategory(dataset)

	case intent.ComparePeriods:
		res.Comparison = comparePeriods(dataset, ents, dr)

	default:
		return Result{}, fmt.Errorf("%w: %q", internalerr.ErrUnknownIntent, in)
	}

	return res, nil
}

// filter applies date, category, merchant, and amount constraints in
// that order, returning a fresh slice.
func filter(dataset []store.Transaction, ents entities.Set, dr daterange.Range) []store.Transaction {
	working := make([]store.Transaction, 0, len(dataset))
	for _, t := range dataset {
		if dr.Bounded() && (t.Date.Before(*dr.Start) || t.Date.After(*dr.End)) {
			continue
		}
		if ents.Category != "" && t.Category != ents.Category {
			continue
		}
		if ents.Merchant != "" && t.Merchant != ents.Merchant {
			continue
		}
		if ents.Amount != nil && t.Amount < float64(*ents.Amount) {
			continue
		}
		working = append(working, t)
	}
	return working
}

func sumAmount(txs []store.Transaction) float64 {
	var sum float64
	for _, t := range txs {
		sum += t.Amount
	}
	return sum
}

// topCategory answers the "top category" question globally: it groups
// the entire unfiltered dataset by category and returns the one with
// the maximum amount sum. Exact ties break to the lexicographically
// smallest label so results stay deterministic.
func topCategory(dataset []store.Transaction) (string, bool) {
	if len(dataset) == 0 {
		return "", false
	}

	sums := make(map[string]float64)
	for _, t := range dataset {
		sums[t.Category] += t.Amount
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if sums[labels[i]] != sums[labels[j]] {
			return sums[labels[i]] > sums[labels[j]]
		}
		return labels[i] < labels[j]
	})

	return labels[0], true
}

// comparePeriods produces one sum per calendar month spanned by the
// resolved range, inclusive, including months with zero matching
// transactions. Each month uses its full first-to-last-day window.
// Only the category and merchant constraints apply; the amount
// threshold and the original possibly-partial range do not.
func comparePeriods(dataset []store.Transaction, ents entities.Set, dr daterange.Range) map[string]int64 {
	out := make(map[string]int64)
	if !dr.Bounded() {
		return out
	}

	matching := make([]store.Transaction, 0, len(dataset))
	for _, t := range dataset {
		if ents.Category != "" && t.Category != ents.Category {
			continue
		}
		if ents.Merchant != "" && t.Merchant != ents.Merchant {
			continue
		}
		matching = append(matching, t)
	}

	year, month := dr.Start.Year(), dr.Start.Month()
	endYear, endMonth := dr.End.Year(), dr.End.Month()
	for year < endYear || (year == endYear && month <= endMonth) {
		label := fmt.Sprintf("%04d-%02d", year, month)

		var sum float64
		for _, t := range matching {
			if t.Date.Year() == year && t.Date.Month() == month {
				sum += t.Amount
			}
		}
		out[label] = int64(sum)

		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	return out
}
