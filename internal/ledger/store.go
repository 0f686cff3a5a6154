// Package ledger owns the authoritative transaction collection and keeps it
// persisted under a single key of a keyvalue.Store.
//
// Every successful Add or Remove writes the full collection before it
// returns. If the write fails the in-memory collection is left as it was.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/keyvalue"
	applog "ledger/internal/log"
)

// Options tunes Load.
type Options struct {
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Logger defaults to a logger derived from slog.Default.
	Logger *applog.Logger

	// RecoverCorrupt starts from an empty ledger, with a warning, when the
	// stored data is corrupt. Otherwise Load fails with *StorageCorruptError.
	RecoverCorrupt bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Clock:  time.Now,
		Logger: applog.FromContext(context.Background()),
	}
}

type Store struct {
	mu     sync.Mutex
	kv     keyvalue.Store
	txs    []core.Transaction
	lastID int64
	clock  func() time.Time
	logger *applog.Logger
}

// Load restores the ledger from kv. A missing key yields an empty ledger.
func Load(ctx context.Context, kv keyvalue.Store, opts Options) (*Store, error) {
	if kv == nil {
		return nil, errors.New("ledger: nil key-value store")
	}
	defaults := DefaultOptions()
	if opts.Clock == nil {
		opts.Clock = defaults.Clock
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	s := &Store{
		kv:     kv,
		clock:  opts.Clock,
		logger: opts.Logger.WithComponent(applog.ComponentLedger),
	}

	data, found, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", StorageKey, err)
	}
	if !found {
		s.logger.DebugContext(ctx, "No stored ledger, starting empty", applog.FieldKey, StorageKey)
		return s, nil
	}

	txs, err := Decode(data)
	if err != nil {
		corrupt := &StorageCorruptError{Key: StorageKey, Err: err}
		if !opts.RecoverCorrupt {
			return nil, corrupt
		}
		s.logger.WarnContext(ctx, "Stored ledger is corrupt, starting empty",
			applog.NewFields().
				WithOperation(applog.OpLoad).
				WithError(corrupt).
				ToSlice()...)
		return s, nil
	}

	s.txs = txs
	for _, t := range txs {
		s.lastID = max(s.lastID, t.ID)
	}
	s.logger.DebugContext(ctx, "Ledger loaded", applog.FieldCount, len(txs))
	return s, nil
}

// Add validates the input, records a new transaction and persists the
// ledger. Validation failures are *core.ValidationError and leave the ledger
// untouched.
func (s *Store) Add(ctx context.Context, description string, amount decimal.Decimal, kind core.Kind) (core.Transaction, error) {
	description, err := core.ValidateDescription(description)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := core.ValidateAmount(amount); err != nil {
		return core.Transaction{}, err
	}
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().Truncate(time.Millisecond)
	t := core.Transaction{
		ID:          s.nextID(now),
		Description: description,
		Amount:      amount,
		Kind:        kind,
		OccurredAt:  now,
	}

	next := append(slices.Clip(s.txs), t)
	if err := s.persist(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	s.txs = next
	s.lastID = t.ID

	s.logger.InfoContext(ctx, "Transaction added",
		applog.NewFields().
			WithOperation(applog.OpAdd).
			WithTransaction(t.ID, t.Description, t.Amount.String(), t.Kind.String()).
			ToSlice()...)
	return t, nil
}

// nextID is the creation time in Unix milliseconds, bumped past the last id
// so two additions in the same millisecond still get distinct, increasing ids.
func (s *Store) nextID(now time.Time) int64 {
	return max(now.UnixMilli(), s.lastID+1)
}

// Remove deletes the transaction with the given id. A missing id is not an
// error: removed is false and nothing is written.
func (s *Store) Remove(ctx context.Context, id int64) (removed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		s.logger.DebugContext(ctx, "Nothing to remove", applog.FieldTransactionID, id)
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.txs), i, i+1)
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.txs = next

	s.logger.InfoContext(ctx, "Transaction removed",
		applog.FieldOperation, applog.OpRemove,
		applog.FieldTransactionID, id)
	return true, nil
}

func (s *Store) persist(ctx context.Context, txs []core.Transaction) error {
	data, err := Encode(txs)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			applog.NewFields().
				WithOperation(applog.OpPersist).
				WithError(err).
				ToSlice()...)
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// List returns a read-only snapshot of the ledger taken at call time. The
// sequence can be ranged over any number of times. Order is unspecified; use
// core.NewestFirst for display order.
func (s *Store) List() iter.Seq[core.Transaction] {
	s.mu.Lock()
	snapshot := slices.Clone(s.txs)
	s.mu.Unlock()

	return func(yield func(core.Transaction) bool) {
		for _, t := range snapshot {
			if !yield(t) {
				return
			}
		}
	}
}

// Get returns the transaction with the given id.
func (s *Store) Get(id int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txs {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}
