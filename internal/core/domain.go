package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind is the direction of a transaction. Amounts are always positive;
	// the sign is carried here.
	Kind string

	Transaction struct {
		ID          int64
		Description string
		Amount      decimal.Decimal
		Kind        Kind
		OccurredAt  time.Time
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
)

// ValidationError reports which input of a new transaction was rejected.
// Err is one of the sentinel errors above, so callers can use errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseKind accepts "income" or "expense", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", &ValidationError{Field: "kind", Err: ErrInvalidKind}
	}
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return &ValidationError{Field: "kind", Err: ErrInvalidKind}
	}
}

func (k Kind) String() string {
	return string(k)
}

// ValidateDescription returns the trimmed description or an error if nothing
// is left after trimming.
func ValidateDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	return s, nil
}

func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.OccurredAt.IsZero() {
		return errors.New("occurred_at cannot be zero")
	}
	return nil
}

// Signed returns the amount with the sign implied by the kind, for display.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
