package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/backend"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

type fakePrompter struct {
	input     TransactionInput
	inputErr  error
	confirm   bool
	confirmed []string
}

func (p *fakePrompter) PromptTransaction(context.Context) (TransactionInput, error) {
	return p.input, p.inputErr
}

func (p *fakePrompter) Confirm(_ context.Context, title string) (bool, error) {
	p.confirmed = append(p.confirmed, title)
	return p.confirm, nil
}

type harness struct {
	app *App
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T, prompter Prompter) *harness {
	t.Helper()
	res, err := backend.NewFactory(applog.Discard()).CreateBackend(context.Background(), backend.Config{Type: backend.MemoryBackend})
	require.NoError(t, err)
	t.Cleanup(func() { res.Cleanup() })

	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.app = &App{
		Service:  res.Service,
		Prompter: prompter,
		Out:      h.out,
		Err:      h.err,
		Logger:   applog.Discard(),
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return h.app.Run(context.Background(), args)
}

func TestAddListSummary(t *testing.T) {
	h := newHarness(t, nil)

	require.Equal(t, ExitOK, h.run("add", "-type", "income", "Salary", "5000"))
	assert.Contains(t, h.out.String(), "Salary")
	assert.Contains(t, h.out.String(), "+5000.00")

	require.Equal(t, ExitOK, h.run("add", "Monthly", "rent", "1500,5"))

	require.Equal(t, ExitOK, h.run("list"))
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Monthly rent")
	assert.True(t, strings.HasSuffix(lines[0], "-1500.50"))
	assert.True(t, strings.HasSuffix(lines[1], "+5000.00"))

	require.Equal(t, ExitOK, h.run("summary"))
	out := h.out.String()
	assert.Contains(t, out, "Income:   5000.00")
	assert.Contains(t, out, "Expense:  1500.50")
	assert.Contains(t, out, "Balance:  3499.50")
	assert.Contains(t, out, "Income: 5000.00 | Expense: 1500.50")
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ExitOK, h.run("list"))
	assert.Equal(t, "No transactions yet.\n", h.out.String())
}

func TestAddErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no args without terminal", []string{"add"}, ExitUsage},
		{"missing amount", []string{"add", "Coffee"}, ExitUsage},
		{"bad type", []string{"add", "-type", "loan", "Coffee", "3"}, ExitUsage},
		{"unknown flag", []string{"add", "-x", "Coffee", "3"}, ExitUsage},
		{"negative amount", []string{"add", "Coffee", "-5"}, ExitError},
		{"zero amount", []string{"add", "Coffee", "0"}, ExitError},
		{"blank description", []string{"add", "  ", "3"}, ExitError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil)
			assert.Equal(t, tc.code, h.run(tc.args...))
			assert.Empty(t, h.app.Service.Transactions())
		})
	}
}

func TestAddInteractive(t *testing.T) {
	p := &fakePrompter{input: TransactionInput{Description: "Coffee", Amount: "3.20", Kind: core.Expense}}
	h := newHarness(t, p)

	require.Equal(t, ExitOK, h.run("add"))
	txs := h.app.Service.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "Coffee", txs[0].Description)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("3.2")))

	p.inputErr = ErrAborted
	assert.Equal(t, ExitError, h.run("add"))
	assert.Contains(t, h.err.String(), "Aborted.")
	assert.Len(t, h.app.Service.Transactions(), 1)
}

func TestRemove(t *testing.T) {
	p := &fakePrompter{}
	h := newHarness(t, p)
	ctx := context.Background()

	tx, err := h.app.Service.AddTransaction(ctx, "Rent", decimal.NewFromInt(1500), core.Expense)
	require.NoError(t, err)
	id := decimal.NewFromInt(tx.ID).String()

	// Declined confirmation keeps the transaction.
	require.Equal(t, ExitOK, h.run("remove", id))
	assert.Equal(t, "Kept.\n", h.out.String())
	require.Len(t, p.confirmed, 1)
	assert.Contains(t, p.confirmed[0], "Rent")
	assert.Len(t, h.app.Service.Transactions(), 1)

	p.confirm = true
	require.Equal(t, ExitOK, h.run("remove", id))
	assert.Contains(t, h.out.String(), "Removed")
	assert.Empty(t, h.app.Service.Transactions())

	// Removing again is a no-op, not an error.
	require.Equal(t, ExitOK, h.run("remove", "-yes", id))
	assert.Contains(t, h.out.String(), "No transaction with id")
}

func TestRemoveNonInteractive(t *testing.T) {
	h := newHarness(t, nil)
	tx, err := h.app.Service.AddTransaction(context.Background(), "Rent", decimal.NewFromInt(1500), core.Expense)
	require.NoError(t, err)
	id := decimal.NewFromInt(tx.ID).String()

	assert.Equal(t, ExitUsage, h.run("remove", id))
	assert.Len(t, h.app.Service.Transactions(), 1)

	assert.Equal(t, ExitOK, h.run("remove", "-yes", id))
	assert.Empty(t, h.app.Service.Transactions())

	assert.Equal(t, ExitUsage, h.run("remove", "abc"))
	assert.Equal(t, ExitUsage, h.run("remove"))
}

func TestUsage(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, ExitUsage, h.run())
	assert.Contains(t, h.err.String(), "Usage: ledger")

	assert.Equal(t, ExitUsage, h.run("frobnicate"))
	assert.Contains(t, h.err.String(), `unknown command "frobnicate"`)

	assert.Equal(t, ExitOK, h.run("help"))
	assert.Contains(t, h.out.String(), "Commands:")

	assert.Equal(t, ExitUsage, h.run("list", "extra"))
}

func TestSummaryUsesCurrentMonth(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.app.Service.AddTransaction(ctx, "Salary", decimal.NewFromInt(100), core.Income)
	require.NoError(t, err)

	// A month far from now sees nothing.
	h.app.Now = func() time.Time { return time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC) }
	require.Equal(t, ExitOK, h.run("summary"))
	assert.Contains(t, h.out.String(), "Income:   100.00")
	assert.Contains(t, h.out.String(), "January 2001: Income: 0.00 | Expense: 0.00")
}
