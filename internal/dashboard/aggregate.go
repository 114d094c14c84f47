package dashboard

import (
	"slices"
	"time"

	"expensek/internal/core"
)

const (
	// WeekDays is the size of the trend chart window, today included.
	WeekDays = 7
	// RecentLimit caps the recent transactions list.
	RecentLimit = 10
)

type (
	// DailyBucket is one point of the trend chart.
	DailyBucket struct {
		Day     string `json:"day"`
		Income  int64  `json:"income"`
		Expense int64  `json:"expense"`
	}

	// CategoryBucket is one slice of the expense breakdown.
	CategoryBucket struct {
		Label           string `json:"label"`
		Amount          int64  `json:"amount"`
		FormattedAmount string `json:"formattedAmount"`
	}

	// DaySum is the total of one transaction subset for a single calendar date.
	DaySum struct {
		Date   time.Time
		Label  string
		Amount int64
	}

	// Formatter renders an amount for display.
	Formatter interface {
		Format(amount int64) string
	}
)

// IsIncome reports whether the transaction belongs to an Income category.
func IsIncome(t core.Transaction) bool {
	ct, ok := t.CategoryType()
	return ok && ct == core.Income
}

// IsExpense reports whether the transaction belongs to an Expense category.
func IsExpense(t core.Transaction) bool {
	ct, ok := t.CategoryType()
	return ok && ct == core.Expense
}

// Filter returns the transactions matching pred, in input order.
func Filter(txs []core.Transaction, pred func(core.Transaction) bool) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sum adds up the amounts of txs.
func Sum(txs []core.Transaction) int64 {
	var total int64
	for _, t := range txs {
		total += t.Amount
	}
	return total
}

// DailyTotals groups txs by calendar date over the whole history and sums each
// group. Groups are returned in order of first appearance.
func DailyTotals(txs []core.Transaction) []DaySum {
	index := map[time.Time]int{}
	var out []DaySum
	for _, t := range txs {
		day := t.Day()
		i, ok := index[day]
		if !ok {
			i = len(out)
			index[day] = i
			out = append(out, DaySum{Date: day, Label: core.DayLabel(t.Date)})
		}
		out[i].Amount += t.Amount
	}
	return out
}

// CategoryBreakdown groups expense transactions by category id and sums each
// group. The result is sorted by amount, highest first; ties keep the order in
// which the categories were first seen. Transactions without a category are skipped.
func CategoryBreakdown(txs []core.Transaction, f Formatter) []CategoryBucket {
	index := map[int64]int{}
	var out []CategoryBucket
	for _, t := range txs {
		if t.Category == nil {
			continue
		}
		i, ok := index[t.Category.ID]
		if !ok {
			i = len(out)
			index[t.Category.ID] = i
			out = append(out, CategoryBucket{Label: t.Category.Label()})
		}
		out[i].Amount += t.Amount
	}
	for i := range out {
		out[i].FormattedAmount = f.Format(out[i].Amount)
	}
	slices.SortStableFunc(out, func(a, b CategoryBucket) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		}
		return 0
	})
	return out
}

// LastSevenDays returns the labels from six days before today through today.
func LastSevenDays(today time.Time) []string {
	start := core.Day(today).AddDate(0, 0, -(WeekDays - 1))
	labels := make([]string, WeekDays)
	for i := range labels {
		labels[i] = core.DayLabel(start.AddDate(0, 0, i))
	}
	return labels
}

// FillWeek left-joins the label skeleton with the income and expense series.
// Lookups are by label, so dates from other years that render the same label
// land in the same bucket and are added together.
func FillWeek(labels []string, income, expense []DaySum) []DailyBucket {
	incomeByLabel := byLabel(income)
	expenseByLabel := byLabel(expense)

	out := make([]DailyBucket, len(labels))
	for i, day := range labels {
		out[i] = DailyBucket{
			Day:     day,
			Income:  incomeByLabel[day],
			Expense: expenseByLabel[day],
		}
	}
	return out
}

func byLabel(series []DaySum) map[string]int64 {
	m := make(map[string]int64, len(series))
	for _, s := range series {
		m[s.Label] += s.Amount
	}
	return m
}
