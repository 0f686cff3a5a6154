package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"ledger/internal/core"
)

// ErrAborted is returned when the user leaves a form without submitting it.
var ErrAborted = errors.New("aborted")

// TransactionInput is what the add form collects.
type TransactionInput struct {
	Description string
	Amount      string
	Kind        core.Kind
}

// Prompter asks the user for input on an interactive terminal.
type Prompter interface {
	PromptTransaction(ctx context.Context) (TransactionInput, error)
	Confirm(ctx context.Context, title string) (bool, error)
}

// FormPrompter renders terminal forms.
type FormPrompter struct {
	Accessible bool
}

func NewFormPrompter() *FormPrompter {
	return &FormPrompter{}
}

func (p *FormPrompter) PromptTransaction(ctx context.Context) (TransactionInput, error) {
	var (
		input TransactionInput
		kind  = string(core.Expense)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Placeholder("Groceries").
				Value(&input.Description).
				Validate(func(s string) error {
					_, err := core.ValidateDescription(s)
					return err
				}),
			huh.NewInput().
				Title("Amount").
				Placeholder("12.34").
				Value(&input.Amount).
				Validate(func(s string) error {
					_, err := core.ParseAmount(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(core.Expense)),
					huh.NewOption("Income", string(core.Income)),
				).
				Value(&kind),
		),
	).WithAccessible(p.Accessible)

	if err := form.RunWithContext(ctx); err != nil {
		return TransactionInput{}, formError(err)
	}
	input.Kind = core.Kind(kind)
	return input, nil
}

func (p *FormPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Remove").
				Negative("Keep").
				Value(&ok),
		),
	).WithAccessible(p.Accessible)

	if err := form.RunWithContext(ctx); err != nil {
		return false, formError(err)
	}
	return ok, nil
}

func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
