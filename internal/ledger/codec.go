package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// StorageKey is the single key the ledger is persisted under.
const StorageKey = "transactions"

// dateLayout matches JavaScript's Date.toISOString, millisecond precision in UTC.
const dateLayout = "2006-01-02T15:04:05.000Z"

// record is the persisted form of a transaction.
type record struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Date        string      `json:"date"`
}

// StorageCorruptError means stored data exists under Key but is not a valid
// ledger.
type StorageCorruptError struct {
	Key string
	Err error
}

func (e *StorageCorruptError) Error() string {
	return fmt.Sprintf("storage key %q is corrupt: %v", e.Key, e.Err)
}

func (e *StorageCorruptError) Unwrap() error {
	return e.Err
}

// Encode serializes the full collection.
func Encode(txs []core.Transaction) ([]byte, error) {
	records := make([]record, len(txs))
	for i, t := range txs {
		records[i] = record{
			ID:          t.ID,
			Description: t.Description,
			Amount:      json.Number(t.Amount.String()),
			Type:        t.Kind.String(),
			Date:        t.OccurredAt.UTC().Format(dateLayout),
		}
	}
	return json.Marshal(records)
}

// Decode is the inverse of Encode. Any record that breaks a transaction
// invariant makes the whole payload invalid.
func Decode(data []byte) ([]core.Transaction, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if records == nil {
		// JSON null
		return nil, errors.New("expected a list of records")
	}

	txs := make([]core.Transaction, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, r := range records {
		t, err := r.transaction()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}
		txs = append(txs, t)
	}
	return txs, nil
}

func (r record) transaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	at, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", r.Date, err)
	}

	t := core.Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      amount,
		Kind:        core.Kind(r.Type),
		OccurredAt:  at.UTC(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
