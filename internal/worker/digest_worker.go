package worker

import (
	"context"
	"fmt"
	"time"

	"expensek/internal/amqp"
	"expensek/internal/dashboard"
	applog "expensek/internal/log"
)

// ViewBuilder produces the current dashboard view.
type ViewBuilder interface {
	Build(ctx context.Context) (dashboard.View, error)
}

// Digest is the condensed dashboard the worker logs.
type Digest struct {
	TotalIncome  int64
	TotalExpense int64
	Balance      int64
	Today        dashboard.DailyBucket
	TopCategory  string
	TopAmount    string
	Recent       int
}

// Summarize condenses a view. The last chart bucket is today.
func Summarize(v dashboard.View) Digest {
	d := Digest{
		TotalIncome:  v.TotalIncome,
		TotalExpense: v.TotalExpense,
		Balance:      v.Balance,
		Recent:       len(v.RecentTransactions),
	}
	if n := len(v.ChartData); n > 0 {
		d.Today = v.ChartData[n-1]
	}
	if len(v.DoughnutData) > 0 {
		d.TopCategory = v.DoughnutData[0].Label
		d.TopAmount = v.DoughnutData[0].FormattedAmount
	}
	return d
}

// DigestWorker rebuilds the dashboard when transactions are recorded and
// on a fixed interval.
type DigestWorker struct {
	builder  ViewBuilder
	logger   *applog.Logger
	interval time.Duration
}

func NewDigestWorker(builder ViewBuilder, logger *applog.Logger, interval time.Duration) *DigestWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &DigestWorker{builder: builder, logger: logger.WithComponent(applog.ComponentWorker), interval: interval}
}

// HandleTransactionRecorded logs the event and a fresh digest. A failed
// rebuild is returned so the message is requeued.
func (w *DigestWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	w.logger.InfoContext(ctx, "Transaction recorded",
		applog.NewFields().WithTransaction(msg.ID, msg.Date, msg.Amount, msg.CategoryID).ToSlice()...)
	if _, err := w.Digest(ctx); err != nil {
		return fmt.Errorf("digest after transaction %d: %w", msg.ID, err)
	}
	return nil
}

// Digest builds the dashboard and logs its summary.
func (w *DigestWorker) Digest(ctx context.Context) (Digest, error) {
	view, err := w.builder.Build(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("build dashboard: %w", err)
	}
	d := Summarize(view)
	fields := applog.NewFields().
		WithOperation(applog.OpDigest).
		WithTotals(d.TotalIncome, d.TotalExpense, d.Balance).
		ToSlice()
	fields = append(fields,
		"today", d.Today.Day,
		"today_income", d.Today.Income,
		"today_expense", d.Today.Expense,
		"top_category", d.TopCategory,
		"top_amount", d.TopAmount,
		"recent", d.Recent)
	w.logger.InfoContext(ctx, "Dashboard digest", fields...)
	return d, nil
}

// Run emits a digest immediately and then every interval until ctx is done.
func (w *DigestWorker) Run(ctx context.Context) error {
	w.tick(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Digest loop stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *DigestWorker) tick(ctx context.Context) {
	if _, err := w.Digest(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Periodic digest failed", applog.FieldError, err)
	}
}
