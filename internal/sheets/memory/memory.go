package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"expensek/internal/core"
)

type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	items []core.Transaction
}

func New(cats []core.Category) *Store {
	return &Store{cats: dedupe(cats)}
}

// NewFromFiles seeds categories from base/seed_categories.txt, one
// "Title|Icon|Type" per line. Falls back to a small default set.
func NewFromFiles(base string) *Store {
	var cats []core.Category
	for _, line := range readLines(filepath.Join(base, "seed_categories.txt")) {
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			continue
		}
		cats = append(cats, core.Category{
			Title: strings.TrimSpace(parts[0]),
			Icon:  strings.TrimSpace(parts[1]),
			Type:  core.CategoryType(strings.TrimSpace(parts[2])),
		})
	}
	if len(cats) == 0 {
		cats = []core.Category{
			{Title: "Salary", Icon: "💰", Type: core.Income},
			{Title: "Food", Icon: "🍔", Type: core.Expense},
			{Title: "Rent", Icon: "🏠", Type: core.Expense},
		}
	}
	return New(cats)
}

// AppendTransaction stores the transaction and returns its id.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Category = nil
	if t.CategoryID != 0 {
		if s.category(t.CategoryID) == nil {
			return 0, fmt.Errorf("category %d: %w", t.CategoryID, core.ErrUnknownCategory)
		}
	}
	t.ID = int64(len(s.items) + 1)
	s.items = append(s.items, t)
	return t.ID, nil
}

// ListTransactions returns every transaction with its category attached.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved(s.items), nil
}

// ListRecentTransactions returns up to limit transactions, newest date first.
// Transactions on the same date keep insertion order.
func (s *Store) ListRecentTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.resolved(s.items)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListCategories returns a copy of the categories.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) resolved(items []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(items))
	for i, t := range items {
		if c := s.category(t.CategoryID); c != nil {
			cc := *c
			t.Category = &cc
		}
		out[i] = t
	}
	return out
}

func (s *Store) category(id int64) *core.Category {
	for i := range s.cats {
		if s.cats[i].ID == id {
			return &s.cats[i]
		}
	}
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupe drops blank and repeated titles and assigns ids in input order.
func dedupe(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			continue
		}
		if _, ok := seen[c.Title]; ok {
			continue
		}
		seen[c.Title] = struct{}{}
		c.ID = int64(len(out) + 1)
		out = append(out, c)
	}
	return out
}
