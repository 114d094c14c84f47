package sheets

import (
	"context"

	"expensek/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionLister returns every transaction with its category resolved.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// RecentTransactionLister returns the latest transactions by date, newest first.
	RecentTransactionLister interface {
		ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (id int64, err error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}
)
