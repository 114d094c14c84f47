package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"expensek/internal/core"
)

// PostgresRepository serves the same ports as SQLiteRepository over a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects, migrates and returns a ready repository.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunPostgresMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const pgSelectTransactions = `
SELECT t.id, t.amount, t.date, t.note, c.id, c.title, c.icon, c.type
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
`

func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, pgSelectTransactions+" ORDER BY t.id")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (r *PostgresRepository) ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, pgSelectTransactions+" ORDER BY t.date DESC, t.id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return collectTransactions(rows)
}

func (r *PostgresRepository) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var categoryID *int64
	if t.CategoryID != 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, t.CategoryID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("get category: %w", err)
		}
		if !exists {
			return 0, fmt.Errorf("category %d: %w", t.CategoryID, core.ErrUnknownCategory)
		}
		categoryID = &t.CategoryID
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (category_id, amount, note, date)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		categoryID, t.Amount, t.Note, core.Day(t.Date)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to Postgres",
		"id", id,
		"amount", t.Amount,
		"date", t.Date.Format(DateLayout),
		"category_id", t.CategoryID)

	return id, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, icon, type FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Category, error) {
		var c core.Category
		err := row.Scan(&c.ID, &c.Title, &c.Icon, &c.Type)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return cats, nil
}

func collectTransactions(rows pgx.Rows) ([]core.Transaction, error) {
	txs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Transaction, error) {
		var (
			t     core.Transaction
			catID *int64
			title *string
			icon  *string
			typ   *string
		)
		if err := row.Scan(&t.ID, &t.Amount, &t.Date, &t.Note, &catID, &title, &icon, &typ); err != nil {
			return t, err
		}
		if catID != nil {
			t.CategoryID = *catID
			t.Category = &core.Category{ID: *catID, Title: deref(title), Icon: deref(icon), Type: core.CategoryType(deref(typ))}
		}
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return txs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
