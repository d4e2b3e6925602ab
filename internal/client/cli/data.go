package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sharmaronit/mindspend-labs/internal/client/facade"
	"github.com/sharmaronit/mindspend-labs/internal/client/models"
)

// printEnvelope renders an operation result. Failures print the error; a
// RequiresLogin failure additionally nudges toward 'login'.
func (a *App) printEnvelope(env facade.Envelope) {
	if !env.Success {
		fmt.Fprintln(a.out, "Error:", env.Error)
		if env.RequiresLogin {
			fmt.Fprintln(a.out, "Run 'login' first.")
		}
		return
	}
	if env.Data == nil {
		fmt.Fprintln(a.out, "OK")
		return
	}
	b, err := json.MarshalIndent(env.Data, "", "  ")
	if err != nil {
		fmt.Fprintln(a.out, "OK (unprintable result)")
		return
	}
	fmt.Fprintln(a.out, string(b))
}

func (a *App) Profile(ctx context.Context) {
	a.printEnvelope(a.facade.Profile(ctx))
}

// SetProfile applies a partial profile update; empty answers leave the
// field unchanged.
func (a *App) SetProfile(ctx context.Context) error {
	var patch models.ProfilePatch

	read := func(prompt string, dst **string) error {
		text, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if text != "" {
			*dst = &text
		}
		return nil
	}

	if err := read("Username (empty to keep)", &patch.Username); err != nil {
		return err
	}
	if err := read("First name (empty to keep)", &patch.FirstName); err != nil {
		return err
	}
	if err := read("Last name (empty to keep)", &patch.LastName); err != nil {
		return err
	}
	if err := read("Bio (empty to keep)", &patch.Bio); err != nil {
		return err
	}

	a.printEnvelope(a.facade.UpdateProfile(ctx, patch))
	return nil
}

// AddMetric records one spending entry. Category may be left blank to have
// it guessed from the description.
func (a *App) AddMetric(ctx context.Context) error {
	value, ok, err := GetFloat(a.reader, "Amount", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	category, err := getSimpleText(a.reader, "Category (empty to guess)", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	a.printEnvelope(a.facade.AddMetric(ctx, models.MetricInput{
		Category:    category,
		Value:       value,
		Description: description,
	}))
	return nil
}

// Metrics lists recent entries, newest first. Optional args: limit, offset.
func (a *App) Metrics(ctx context.Context, args []string) {
	limit, offset := 20, 0
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			offset = n
		}
	}
	a.printEnvelope(a.facade.Metrics(ctx, limit, offset))
}

func (a *App) DeleteMetric(ctx context.Context, id string) {
	a.printEnvelope(a.facade.DeleteMetric(ctx, id))
}

func (a *App) Summary(ctx context.Context) {
	a.printEnvelope(a.facade.FinancialSummary(ctx))
}

// SetSummary reads monthly figures; empty answers keep the stored value.
func (a *App) SetSummary(ctx context.Context) error {
	var in models.FinancialInput

	read := func(prompt string, dst **float64) error {
		v, ok, err := GetFloat(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if ok {
			*dst = &v
		}
		return nil
	}

	fields := []struct {
		prompt string
		dst    **float64
	}{
		{"Monthly income", &in.MonthlyIncome},
		{"Rent", &in.Rent},
		{"Utilities", &in.Utilities},
		{"Tuition", &in.Tuition},
		{"Loans", &in.Loans},
		{"Insurance", &in.Insurance},
		{"Subscriptions", &in.Subscriptions},
		{"Other expenses", &in.OtherExpenses},
	}
	for _, field := range fields {
		if err := read(field.prompt+" (empty to keep)", field.dst); err != nil {
			return err
		}
	}

	a.printEnvelope(a.facade.UpdateFinancialSummary(ctx, in))
	return nil
}

func (a *App) Analyze(ctx context.Context) {
	a.printEnvelope(a.facade.RefreshAnalysis(ctx))
}

func (a *App) Export(ctx context.Context) {
	a.printEnvelope(a.facade.Export(ctx))
}
