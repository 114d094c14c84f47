package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"expensek/internal/core"

	_ "modernc.org/sqlite"
)

// DateLayout is how calendar dates are stored in SQLite.
const DateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements sheets.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toTransactions(rows)
}

// ListRecentTransactions implements sheets.RecentTransactionLister
func (r *SQLiteRepository) ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.ListRecentTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return toTransactions(rows)
}

// AppendTransaction implements sheets.TransactionWriter
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var categoryID sql.NullInt64
	if t.CategoryID != 0 {
		if _, err := r.queries.GetCategory(ctx, t.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, fmt.Errorf("category %d: %w", t.CategoryID, core.ErrUnknownCategory)
			}
			return 0, fmt.Errorf("get category: %w", err)
		}
		categoryID = sql.NullInt64{Int64: t.CategoryID, Valid: true}
	}

	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		CategoryID: categoryID,
		Amount:     t.Amount,
		Note:       t.Note,
		Date:       t.Date.Format(DateLayout),
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"amount", t.Amount,
		"date", t.Date.Format(DateLayout),
		"category_id", t.CategoryID)

	return id, nil
}

// ListCategories implements sheets.CategoryReader
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = core.Category{ID: c.ID, Title: c.Title, Icon: c.Icon, Type: core.CategoryType(c.Type)}
	}
	return out, nil
}

func toTransactions(rows []TransactionRow) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		date, err := time.Parse(DateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date of transaction %d: %w", row.ID, err)
		}
		t := core.Transaction{
			ID:     row.ID,
			Amount: row.Amount,
			Date:   date,
			Note:   row.Note,
		}
		if row.CategoryID.Valid {
			t.CategoryID = row.CategoryID.Int64
			t.Category = &core.Category{
				ID:    row.CategoryID.Int64,
				Title: row.CategoryTitle.String,
				Icon:  row.CategoryIcon.String,
				Type:  core.CategoryType(row.CategoryType.String),
			}
		}
		out[i] = t
	}
	return out, nil
}
