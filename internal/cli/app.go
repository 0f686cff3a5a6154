package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const usage = `Usage: ledger <command> [arguments]

Commands:
  add [-type income|expense] <description> <amount>
                     record a transaction; without arguments opens a form
  remove [-yes] <id> delete a transaction
  list               show transactions, newest first
  summary            show totals and the current month
`

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// App dispatches commands against a ledger service.
type App struct {
	Service *services.LedgerService

	// Prompter is nil when stdin is not a terminal.
	Prompter Prompter

	Out io.Writer
	Err io.Writer

	// Now defaults to time.Now; its location is used for display dates and
	// for the current month.
	Now func() time.Time

	Logger *applog.Logger
}

// Run executes the command in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.Logger == nil {
		a.Logger = applog.FromContext(ctx)
	}

	if len(args) == 0 {
		fmt.Fprint(a.Err, usage)
		return ExitUsage
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "add":
		err = a.add(ctx, rest)
	case "remove", "rm":
		err = a.remove(ctx, rest)
	case "list", "ls":
		err = a.list(rest)
	case "summary":
		err = a.summary(rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.Out, usage)
		return ExitOK
	default:
		err = usagef("unknown command %q", cmd)
	}

	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp):
		return ExitUsage
	case errors.As(err, &ue):
		fmt.Fprintf(a.Err, "ledger: %v\n\n%s", err, usage)
		return ExitUsage
	case errors.Is(err, ErrAborted):
		fmt.Fprintln(a.Err, "Aborted.")
		return ExitError
	default:
		a.Logger.DebugContext(ctx, "Command failed", "command", args[0], applog.FieldError, err)
		fmt.Fprintf(a.Err, "ledger: %v\n", err)
		return ExitError
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

// parseFlags turns flag errors other than -h into usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return usagef("%v", err)
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	kindFlag := fs.String("type", string(core.Expense), "transaction type: income or expense")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var input TransactionInput
	switch rest := fs.Args(); {
	case len(rest) == 0:
		if a.Prompter == nil {
			return usagef("add needs <description> <amount> when not run interactively")
		}
		var err error
		if input, err = a.Prompter.PromptTransaction(ctx); err != nil {
			return err
		}
	case len(rest) == 1:
		return usagef("add needs both <description> and <amount>")
	default:
		kind, err := core.ParseKind(*kindFlag)
		if err != nil {
			return usagef("%v", err)
		}
		input = TransactionInput{
			Description: strings.Join(rest[:len(rest)-1], " "),
			Amount:      rest[len(rest)-1],
			Kind:        kind,
		}
	}

	amount, err := core.ParseAmount(input.Amount)
	if err != nil {
		return err
	}
	t, err := a.Service.AddTransaction(ctx, input.Description, amount, input.Kind)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Added %s\n", formatTransaction(t, a.Now().Location()))
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	fs := a.newFlagSet("remove")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("remove needs exactly one <id>")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return usagef("invalid id %q", fs.Arg(0))
	}

	txs := a.Service.Transactions()
	i := slices.IndexFunc(txs, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		fmt.Fprintf(a.Out, "No transaction with id %d.\n", id)
		return nil
	}
	t := txs[i]

	if !*yes {
		if a.Prompter == nil {
			return usagef("remove needs -yes when not run interactively")
		}
		ok, err := a.Prompter.Confirm(ctx, fmt.Sprintf("Remove %q (%s)?", t.Description, formatSigned(t)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.Out, "Kept.")
			return nil
		}
	}

	removed, err := a.Service.RemoveTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(a.Out, "No transaction with id %d.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "Removed %s\n", formatTransaction(t, a.Now().Location()))
	return nil
}

func (a *App) list(args []string) error {
	if len(args) > 0 {
		return usagef("list takes no arguments")
	}

	txs := a.Service.Transactions()
	if len(txs) == 0 {
		fmt.Fprintln(a.Out, "No transactions yet.")
		return nil
	}
	loc := a.Now().Location()
	for _, t := range txs {
		fmt.Fprintln(a.Out, formatTransaction(t, loc))
	}
	return nil
}

func (a *App) summary(args []string) error {
	if len(args) > 0 {
		return usagef("summary takes no arguments")
	}

	s := a.Service.Summary(a.Now())
	fmt.Fprintf(a.Out, "Income:   %s\n", formatAmount(s.Totals.Income))
	fmt.Fprintf(a.Out, "Expense:  %s\n", formatAmount(s.Totals.Expense))
	fmt.Fprintf(a.Out, "Balance:  %s\n", formatAmount(s.Totals.Balance))
	fmt.Fprintf(a.Out, "%s %d: Income: %s | Expense: %s\n",
		s.Month.Month, s.Month.Year, formatAmount(s.Month.Income), formatAmount(s.Month.Expense))
	return nil
}
