package core

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Totals is the all-time summary of a ledger.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// MonthTotals is the income and expense of a single calendar month.
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (m MonthTotals) Balance() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}

// ComputeTotals sums income and expense over txs. Nothing is rounded.
func ComputeTotals(txs iter.Seq[Transaction]) Totals {
	income, expense := sumByKind(txs, func(Transaction) bool { return true })
	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// ComputeMonthlyTotals sums the transactions that fall in the same calendar
// month and year as now. Each timestamp is read in now's location, so the
// calendar is the one the caller lives in.
func ComputeMonthlyTotals(txs iter.Seq[Transaction], now time.Time) MonthTotals {
	year, month := now.Year(), now.Month()
	loc := now.Location()

	income, expense := sumByKind(txs, func(t Transaction) bool {
		at := t.OccurredAt.In(loc)
		return at.Year() == year && at.Month() == month
	})
	return MonthTotals{
		Year:    year,
		Month:   month,
		Income:  income,
		Expense: expense,
	}
}

func sumByKind(txs iter.Seq[Transaction], keep func(Transaction) bool) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	if txs == nil {
		return income, expense
	}
	for t := range txs {
		if !keep(t) {
			continue
		}
		switch t.Kind {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

// NewestFirst collects txs into a new slice ordered by id, highest first.
// This is the display order of a ledger.
func NewestFirst(txs iter.Seq[Transaction]) []Transaction {
	if txs == nil {
		return nil
	}
	out := slices.Collect(txs)
	slices.SortFunc(out, func(a, b Transaction) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}
