package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// TransactionRow is a transaction joined with its (optional) category.
type TransactionRow struct {
	ID            int64
	Amount        int64
	Date          string
	Note          string
	CategoryID    sql.NullInt64
	CategoryTitle sql.NullString
	CategoryIcon  sql.NullString
	CategoryType  sql.NullString
}

type Category struct {
	ID    int64
	Title string
	Icon  string
	Type  string
}

type CreateTransactionParams struct {
	CategoryID sql.NullInt64
	Amount     int64
	Note       string
	Date       string
}

const listTransactions = `
SELECT t.id, t.amount, t.date, t.note, c.id, c.title, c.icon, c.type
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
ORDER BY t.id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	return scanTransactionRows(rows)
}

const listRecentTransactions = `
SELECT t.id, t.amount, t.date, t.note, c.id, c.title, c.icon, c.type
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
ORDER BY t.date DESC, t.id
LIMIT ?
`

func (q *Queries) ListRecentTransactions(ctx context.Context, limit int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecentTransactions, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactionRows(rows)
}

const createTransaction = `
INSERT INTO transactions (category_id, amount, note, date)
VALUES (?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createTransaction, arg.CategoryID, arg.Amount, arg.Note, arg.Date).Scan(&id)
	return id, err
}

const listCategories = `
SELECT id, title, icon, type FROM categories ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Icon, &c.Type); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `
SELECT id, title, icon, type FROM categories WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := q.db.QueryRowContext(ctx, getCategory, id).Scan(&c.ID, &c.Title, &c.Icon, &c.Type)
	return c, err
}

func scanTransactionRows(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(
			&r.ID,
			&r.Amount,
			&r.Date,
			&r.Note,
			&r.CategoryID,
			&r.CategoryTitle,
			&r.CategoryIcon,
			&r.CategoryType,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
