package google

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"expensek/internal/core"
)

var dateLayouts = []string{"2006-01-02", "1/2/2006", "02-01-2006"}

// parseCategories reads rows of ID, Title, Icon, Type. A header row and
// rows without a numeric id or a title are skipped.
func parseCategories(values [][]interface{}) []core.Category {
	out := make([]core.Category, 0, len(values))
	seen := map[int64]struct{}{}
	for _, raw := range values {
		row := toStrings(raw)
		id, err := strconv.ParseInt(safeGet(row, 0), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		title := safeGet(row, 1)
		if title == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, core.Category{
			ID:    id,
			Title: title,
			Icon:  safeGet(row, 2),
			Type:  parseCategoryType(safeGet(row, 3)),
		})
	}
	return out
}

// parseTransactions reads rows of ID, Date, Amount, CategoryID, Note and
// attaches the matching category. Rows with an unreadable date or amount
// are skipped; an unknown category id leaves the transaction uncategorized.
func parseTransactions(values [][]interface{}, cats []core.Category) []core.Transaction {
	byID := make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	out := make([]core.Transaction, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		date, ok := parseDate(safeGet(row, 1))
		if !ok {
			continue
		}
		amount, ok := parseAmount(safeGet(row, 2))
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(safeGet(row, 0), 10, 64)
		if err != nil {
			id = int64(i)
		}
		t := core.Transaction{ID: id, Date: date, Amount: amount, Note: safeGet(row, 4)}
		if catID, err := strconv.ParseInt(safeGet(row, 3), 10, 64); err == nil {
			if c, found := byID[catID]; found {
				t.CategoryID = catID
				t.Category = &c
			}
		}
		out = append(out, t)
	}
	return out
}

func newestFirst(txs []core.Transaction, limit int) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dataRows counts the non-header rows of a single-column read.
func dataRows(values [][]interface{}) int {
	n := len(values)
	if n > 0 {
		first := toStrings(values[0])
		if _, err := strconv.ParseInt(safeGet(first, 0), 10, 64); err != nil {
			n--
		}
	}
	return n
}

func parseCategoryType(s string) core.CategoryType {
	switch {
	case strings.EqualFold(s, string(core.Income)):
		return core.Income
	case strings.EqualFold(s, string(core.Expense)):
		return core.Expense
	default:
		return core.CategoryType(s)
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return core.Day(d), true
		}
	}
	return time.Time{}, false
}

// parseAmount accepts whole amounts with optional currency symbol and
// thousands separators. Fractions are rounded.
func parseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		return int64(f - 0.5), true
	}
	return int64(f + 0.5), true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
