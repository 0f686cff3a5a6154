package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ledger/internal/core"
)

func TestFormatTransaction(t *testing.T) {
	at := time.Date(2025, 3, 5, 23, 30, 0, 0, time.UTC)
	tx := core.Transaction{
		ID:          1741217400000,
		Description: "Rent",
		Amount:      decimal.RequireFromString("1500.5"),
		Kind:        core.Expense,
		OccurredAt:  at,
	}

	assert.Equal(t, "1741217400000  Rent (5/3/2025)  -1500.50", formatTransaction(tx, time.UTC))

	// The display date follows the viewer's calendar.
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, "6/3/2025", formatDate(at, plus2))

	tx.Kind = core.Income
	tx.Amount = decimal.RequireFromString("0.005")
	assert.Equal(t, "+0.01", formatSigned(tx))
}
