package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"expensek/internal/config"
	applog "expensek/internal/log"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "json")
	if logger == nil || !logger.Enabled(context.Background(), -4) {
		t.Fatal("debug level should be enabled")
	}
	if SetupLogger("loud", "text").Enabled(context.Background(), -4) {
		t.Error("unknown level should fall back to info")
	}
}

func TestCurrencyFormatter(t *testing.T) {
	f, err := CurrencyFormatter(&config.Config{CurrencyLocale: "en-US", CurrencySymbol: "$"})
	if err != nil {
		t.Fatalf("CurrencyFormatter: %v", err)
	}
	if got := f.Format(1234); got != "$1,234" {
		t.Errorf("Format(1234) = %q", got)
	}
	if _, err := CurrencyFormatter(&config.Config{CurrencyLocale: "???"}); err == nil {
		t.Error("expected error for bad locale")
	}
}

func TestBackendConfigShared(t *testing.T) {
	mem := &config.Config{DataBackend: "memory"}
	if _, err := BackendConfig(mem, false); err != nil {
		t.Fatalf("server may use the memory backend: %v", err)
	}
	if _, err := BackendConfig(mem, true); err == nil || !strings.Contains(err.Error(), "memory backend") {
		t.Fatalf("worker must reject the memory backend, got %v", err)
	}
	bcfg, err := BackendConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, true)
	if err != nil || bcfg.SQLiteDBPath != "x.db" {
		t.Fatalf("sqlite should be accepted: %+v err=%v", bcfg, err)
	}
}

func TestInitAMQPDisabled(t *testing.T) {
	logger := applog.New(applog.Config{Level: 8})
	if c := InitAMQP(logger, &config.Config{}, false); c != nil {
		t.Fatal("expected nil client without AMQP_URL")
	}
}

func TestGracefulShutdownOnParentCancel(t *testing.T) {
	logger := applog.New(applog.Config{Level: 8})
	parent, cancel := context.WithCancel(context.Background())

	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(parent, logger, time.Second, func(context.Context) { close(cleaned) })
	cancel()

	finished := make(chan struct{})
	go func() {
		WaitForShutdown(ctx, done)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup was not run")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("ctx.Err() = %v", ctx.Err())
	}
}
