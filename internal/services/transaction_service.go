package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"expensek/internal/amqp"
	"expensek/internal/core"
	"expensek/internal/sheets"
)

// Publisher announces persisted transactions.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
}

// TransactionService persists transactions and publishes a recorded event
// for each one.
type TransactionService struct {
	store     sheets.TransactionWriter
	publisher Publisher
}

// NewTransactionService wires a store with an optional publisher.
func NewTransactionService(store sheets.TransactionWriter, publisher Publisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// Record validates and saves t, returning it with its assigned id. A failed
// publish is logged and does not fail the call since the write already
// succeeded.
func (s *TransactionService) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Note = strings.TrimSpace(t.Note)
	t.Date = core.Day(t.Date)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if s.store == nil {
		return core.Transaction{}, errors.New("transaction store not configured")
	}

	id, err := s.store.AppendTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id

	if err := s.publish(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction recorded message", "id", id, "error", err)
	}
	return t, nil
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping recorded message", "id", t.ID)
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, amqp.NewTransactionRecordedMessage(t))
}

// Close closes the publisher when it holds a connection.
func (s *TransactionService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
