package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
)

// EventPublisher sends ledger change notifications. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
	Close() error
}

// Summary is everything the presentation layer shows about a ledger.
type Summary struct {
	Totals core.Totals
	Month  core.MonthTotals
}

// LedgerService orchestrates ledger mutations and change events
type LedgerService struct {
	ledger    *ledger.Store
	storage   io.Closer
	publisher EventPublisher
}

// NewLedgerService wires the store with its backing storage (closed by Close)
// and an optional publisher.
func NewLedgerService(store *ledger.Store, storage io.Closer, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		ledger:    store,
		storage:   storage,
		publisher: publisher,
	}
}

// AddTransaction records a transaction locally and then announces it
func (s *LedgerService) AddTransaction(ctx context.Context, description string, amount decimal.Decimal, kind core.Kind) (core.Transaction, error) {
	t, err := s.ledger.Add(ctx, description, amount, kind)
	if err != nil {
		return core.Transaction{}, err
	}

	// A failed publish doesn't fail the operation, the transaction is saved locally
	s.publish(ctx, amqp.EventTransactionAdded, t.ID)

	return t, nil
}

// RemoveTransaction removes a transaction locally and announces it if
// something was actually removed
func (s *LedgerService) RemoveTransaction(ctx context.Context, id int64) (bool, error) {
	removed, err := s.ledger.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	s.publish(ctx, amqp.EventTransactionRemoved, id)

	return true, nil
}

// Transactions returns a snapshot of the ledger in display order.
func (s *LedgerService) Transactions() []core.Transaction {
	return core.NewestFirst(s.ledger.List())
}

// Snapshot returns the raw ledger snapshot.
func (s *LedgerService) Snapshot() iter.Seq[core.Transaction] {
	return s.ledger.List()
}

// Summary derives all-time and current-month totals from one snapshot.
func (s *LedgerService) Summary(now time.Time) Summary {
	snapshot := s.ledger.List()
	return Summary{
		Totals: core.ComputeTotals(snapshot),
		Month:  core.ComputeMonthlyTotals(snapshot, now),
	}
}

func (s *LedgerService) publish(ctx context.Context, eventType amqp.EventType, id int64) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentService)
	if s.publisher == nil {
		logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event",
			applog.FieldEventType, eventType)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEventMessage(eventType, id)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ledger event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventType, eventType,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	}
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}

	return nil
}
