package google

import (
	"context"
	"errors"
	"strings"
	"testing"

	"expensek/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet", ServiceAccountFile: "/does/not/exist.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{SpreadsheetID: "  id  "}.withDefaults()
	if o.SpreadsheetID != "id" || o.TransactionsSheet != "Transactions" || o.CategoriesSheet != "Categories" || o.CategoriesTTL <= 0 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

func TestClient_AppendValidatesFirst(t *testing.T) {
	c := newClient(nil, Options{SpreadsheetID: "test"}.withDefaults())
	_, err := c.AppendTransaction(context.Background(), core.Transaction{Amount: 0, Date: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestClient_CachedCategoriesSkipService(t *testing.T) {
	c := newClient(nil, Options{SpreadsheetID: "test"}.withDefaults())
	if _, err := c.ListCategories(context.Background()); err == nil {
		t.Fatal("expected error with uninitialized service")
	}

	c.categories.Set(categoriesCacheKey, []core.Category{{ID: 1, Title: "Food", Type: core.Expense}})
	cats, err := c.ListCategories(context.Background())
	if err != nil || len(cats) != 1 {
		t.Fatalf("expected cached categories, got %+v err=%v", cats, err)
	}

	_, err = c.AppendTransaction(context.Background(), core.Transaction{Amount: 5, Date: core.NewDate(2025, 1, 1), CategoryID: 7})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}
