package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"expensek/internal/amqp"
	"expensek/internal/dashboard"
	applog "expensek/internal/log"
)

type fakeBuilder struct {
	view  dashboard.View
	err   error
	calls int
}

func (f *fakeBuilder) Build(context.Context) (dashboard.View, error) {
	f.calls++
	return f.view, f.err
}

func sampleView() dashboard.View {
	return dashboard.View{
		TotalIncome:  2500,
		TotalExpense: 100,
		Balance:      2400,
		ChartData: []dashboard.DailyBucket{
			{Day: "09-Mar", Income: 0, Expense: 60},
			{Day: "10-Mar", Income: 2500, Expense: 40},
		},
		DoughnutData: []dashboard.CategoryBucket{
			{Label: "🍔 Food", Amount: 100, FormattedAmount: "$100"},
		},
	}
}

func testLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelInfo, Format: "text", Component: applog.ComponentApp, Output: buf})
}

func TestSummarize(t *testing.T) {
	d := Summarize(sampleView())
	if d.Balance != 2400 || d.Today.Day != "10-Mar" || d.Today.Income != 2500 || d.TopCategory != "🍔 Food" || d.TopAmount != "$100" {
		t.Fatalf("unexpected digest: %+v", d)
	}
	if empty := Summarize(dashboard.View{}); empty.TopCategory != "" || empty.Today.Day != "" {
		t.Fatalf("empty view should give empty digest, got %+v", empty)
	}
}

func TestHandleTransactionRecorded(t *testing.T) {
	var buf bytes.Buffer
	b := &fakeBuilder{view: sampleView()}
	w := NewDigestWorker(b, testLogger(&buf), time.Hour)

	msg := &amqp.TransactionRecordedMessage{ID: 7, Date: "2025-03-10", Amount: 40}
	if err := w.HandleTransactionRecorded(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Transaction recorded", "transaction_id=7", "Dashboard digest", "balance=2400", "component=worker"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	b.err = errors.New("db down")
	if err := w.HandleTransactionRecorded(context.Background(), msg); err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected build error to propagate, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	b := &fakeBuilder{view: sampleView()}
	w := NewDigestWorker(b, testLogger(&buf), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if b.calls < 1 {
		t.Fatal("Run should emit an initial digest")
	}
}
