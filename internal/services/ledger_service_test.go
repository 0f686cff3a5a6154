package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/keyvalue/memory"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
)

type fakePublisher struct {
	events   []*amqp.LedgerEventMessage
	fail     bool
	closed   bool
	closeErr error
}

func (f *fakePublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEventMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.events = append(f.events, msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return f.closeErr
}

func newService(t *testing.T, pub EventPublisher, clock func() time.Time) (*LedgerService, *memory.Store) {
	t.Helper()
	kv := memory.New()
	store, err := ledger.Load(context.Background(), kv, ledger.Options{Clock: clock, Logger: applog.Discard()})
	require.NoError(t, err)
	return NewLedgerService(store, kv, pub), kv
}

func TestLedgerServicePublishesEvents(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := newService(t, pub, func() time.Time { return now })

	tx, err := svc.AddTransaction(ctx, "Salary", decimal.NewFromInt(5000), core.Income)
	require.NoError(t, err)

	removed, err := svc.RemoveTransaction(ctx, 999)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = svc.RemoveTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	require.Len(t, pub.events, 2, "a no-op removal publishes nothing")
	assert.Equal(t, amqp.EventTransactionAdded, pub.events[0].Type)
	assert.Equal(t, tx.ID, pub.events[0].TransactionID)
	assert.Equal(t, amqp.EventTransactionRemoved, pub.events[1].Type)
}

func TestLedgerServiceIgnoresPublishFailure(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{fail: true}
	svc, kv := newService(t, pub, time.Now)

	_, err := svc.AddTransaction(ctx, "Rent", decimal.NewFromInt(1500), core.Expense)
	require.NoError(t, err)

	_, found, err := kv.Get(ctx, ledger.StorageKey)
	require.NoError(t, err)
	assert.True(t, found, "local write must happen regardless of the broker")
}

func TestLedgerServiceValidationPublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newService(t, pub, time.Now)

	_, err := svc.AddTransaction(context.Background(), "", decimal.NewFromInt(10), core.Income)
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
	assert.Empty(t, pub.events)
}

func TestLedgerServiceSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := now.AddDate(0, -1, 0)
	svc, _ := newService(t, nil, func() time.Time { return clock })

	_, err := svc.AddTransaction(ctx, "February salary", decimal.NewFromInt(4000), core.Income)
	require.NoError(t, err)
	clock = now
	_, err = svc.AddTransaction(ctx, "Salary", decimal.NewFromInt(5000), core.Income)
	require.NoError(t, err)
	_, err = svc.AddTransaction(ctx, "Rent", decimal.NewFromInt(1500), core.Expense)
	require.NoError(t, err)

	sum := svc.Summary(now)
	assert.True(t, sum.Totals.Income.Equal(decimal.NewFromInt(9000)))
	assert.True(t, sum.Totals.Balance.Equal(decimal.NewFromInt(7500)))
	assert.True(t, sum.Month.Income.Equal(decimal.NewFromInt(5000)))
	assert.True(t, sum.Month.Expense.Equal(decimal.NewFromInt(1500)))

	txs := svc.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, "Rent", txs[0].Description)
	assert.Equal(t, "February salary", txs[2].Description)
}

func TestLedgerServiceClose(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &LedgerService{}
		assert.NoError(t, service.Close())
	})

	t.Run("joins errors", func(t *testing.T) {
		pub := &fakePublisher{closeErr: errors.New("channel gone")}
		svc, kv := newService(t, pub, time.Now)

		err := svc.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel gone")
		assert.True(t, pub.closed)

		_, _, err = kv.Get(context.Background(), ledger.StorageKey)
		assert.Error(t, err, "storage should be closed")
	})
}
