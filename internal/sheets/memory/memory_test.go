package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"expensek/internal/core"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Category{
		{Title: "Food", Icon: "🍔", Type: core.Expense},
		{Title: "Food", Icon: "🍕", Type: core.Expense},
		{Title: "Salary", Icon: "💰", Type: core.Income},
	})
	cats, err := s.ListCategories(ctx)
	if err != nil || len(cats) != 2 || cats[0].ID != 1 || cats[1].ID != 2 {
		t.Fatalf("unexpected categories: %+v err=%v", cats, err)
	}

	id, err := s.AppendTransaction(ctx, core.Transaction{Amount: 40, Date: core.NewDate(2025, 1, 1), CategoryID: 1})
	if err != nil || id != 1 {
		t.Fatalf("unexpected append: id=%d err=%v", id, err)
	}
	if _, err := s.AppendTransaction(ctx, core.Transaction{Amount: 0, Date: core.NewDate(2025, 1, 1)}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := s.AppendTransaction(ctx, core.Transaction{Amount: 1, Date: core.NewDate(2025, 1, 1), CategoryID: 42}); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	txs, _ := s.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].Category == nil || txs[0].Category.Label() != "🍔 Food" {
		t.Fatalf("expected resolved category, got %+v", txs)
	}
}

func TestListRecentTransactions(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Category{{Title: "Food", Icon: "🍔", Type: core.Expense}})
	dates := []int{3, 5, 5, 1, 4}
	for _, d := range dates {
		if _, err := s.AppendTransaction(ctx, core.Transaction{Amount: int64(d), Date: core.NewDate(2025, 2, d)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := s.ListRecentTransactions(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	wantIDs := []int64{2, 3, 5}
	if len(recent) != len(wantIDs) {
		t.Fatalf("expected %d transactions, got %d", len(wantIDs), len(recent))
	}
	for i, id := range wantIDs {
		if recent[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, recent[i].ID)
		}
	}
	if recent[0].Category != nil {
		t.Fatalf("uncategorized transaction must stay uncategorized")
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	// No files -> defaults
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background())
	if len(cats) == 0 {
		t.Fatalf("expected defaults when files missing")
	}

	content := "# title|icon|type\nSalary|💰|Income\nFood|🍔|Expense\nSalary|💰|Income\nbroken line\n\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background())
	if len(cats) != 2 || cats[0].Title != "Salary" || cats[1].Type != core.Expense {
		t.Fatalf("unexpected cats: %+v", cats)
	}
}
