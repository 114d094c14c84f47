// Package dashboard builds the dashboard view: totals, a seven day trend,
// the expense breakdown by category and the latest transactions.
//
// Every request loads the full transaction set and aggregates it in memory.
// Nothing is kept between builds.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expensek/internal/core"
	"expensek/internal/sheets"
)

// View is everything the dashboard page renders.
type View struct {
	TotalIncome        int64              `json:"totalIncome"`
	TotalExpense       int64              `json:"totalExpense"`
	Balance            int64              `json:"balance"`
	ChartData          []DailyBucket      `json:"chartData"`
	DoughnutData       []CategoryBucket   `json:"doughnutData"`
	RecentTransactions []core.Transaction `json:"recentTransactions"`
}

// Source is the storage the dashboard reads from.
type Source interface {
	sheets.TransactionLister
	sheets.RecentTransactionLister
}

type Service struct {
	source    Source
	formatter Formatter
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to place the seven day window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFormatter overrides the currency formatter of the breakdown.
func WithFormatter(f Formatter) Option {
	return func(s *Service) { s.formatter = f }
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source:    source,
		formatter: core.DefaultCurrencyFormatter(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build loads the transactions and assembles the view. The two reads run
// one after the other; the first storage error aborts the build and no
// partial view is returned.
func (s *Service) Build(ctx context.Context) (View, error) {
	all, err := s.source.ListTransactions(ctx)
	if err != nil {
		return View{}, fmt.Errorf("list transactions: %w", err)
	}
	recent, err := s.source.ListRecentTransactions(ctx, RecentLimit)
	if err != nil {
		return View{}, fmt.Errorf("list recent transactions: %w", err)
	}

	view := Assemble(all, recent, s.now(), s.formatter)
	slog.DebugContext(ctx, "Dashboard built",
		"transactions", len(all),
		"total_income", view.TotalIncome,
		"total_expense", view.TotalExpense,
		"categories", len(view.DoughnutData))
	return view, nil
}

// Assemble computes the view from already loaded data.
func Assemble(all, recent []core.Transaction, today time.Time, f Formatter) View {
	income := Filter(all, IsIncome)
	expense := Filter(all, IsExpense)

	view := View{
		TotalIncome:  Sum(income),
		TotalExpense: Sum(expense),
		ChartData:    FillWeek(LastSevenDays(today), DailyTotals(income), DailyTotals(expense)),
		DoughnutData: CategoryBreakdown(expense, f),
	}
	view.Balance = view.TotalIncome - view.TotalExpense

	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	view.RecentTransactions = recent
	if view.DoughnutData == nil {
		view.DoughnutData = []CategoryBucket{}
	}
	if view.RecentTransactions == nil {
		view.RecentTransactions = []core.Transaction{}
	}
	return view
}
