package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatDate renders D/M/YYYY in loc, without zero padding.
func formatDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

func formatSigned(t core.Transaction) string {
	sign := "+"
	if t.Kind == core.Expense {
		sign = "-"
	}
	return sign + formatAmount(t.Amount)
}

// formatTransaction renders one list line: id, description with date, signed amount.
func formatTransaction(t core.Transaction, loc *time.Location) string {
	return fmt.Sprintf("%d  %s (%s)  %s", t.ID, t.Description, formatDate(t.OccurredAt, loc), formatSigned(t))
}
