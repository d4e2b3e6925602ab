package analysis

import (
	"fmt"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/client/models"
)

// expense pairs a display label with its amount for the highest-category
// scan. Order matters: ties resolve to the earlier entry.
type expense struct {
	label  string
	amount float64
}

// ComputeFinancial applies the input figures to the current summary and
// recomputes every derived field: total expenses, disposable income,
// highest expense category and the generated savings tips.
func ComputeFinancial(current models.FinancialSummary, in models.FinancialInput, now time.Time) models.FinancialSummary {
	s := current

	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&s.MonthlyIncome, in.MonthlyIncome)
	apply(&s.Rent, in.Rent)
	apply(&s.Utilities, in.Utilities)
	apply(&s.Tuition, in.Tuition)
	apply(&s.Loans, in.Loans)
	apply(&s.Insurance, in.Insurance)
	apply(&s.Subscriptions, in.Subscriptions)
	apply(&s.OtherExpenses, in.OtherExpenses)

	expenses := []expense{
		{"Rent", s.Rent},
		{"Utilities", s.Utilities},
		{"Tuition", s.Tuition},
		{"Loans", s.Loans},
		{"Insurance", s.Insurance},
		{"Subscriptions", s.Subscriptions},
		{"Other", s.OtherExpenses},
	}

	s.TotalExpenses = 0
	highest := expenses[0]
	for _, e := range expenses {
		s.TotalExpenses += e.amount
		if e.amount > highest.amount {
			highest = e
		}
	}
	s.HighestCategory = highest.label
	s.HighestAmount = highest.amount
	s.DisposableIncome = s.MonthlyIncome - s.TotalExpenses

	s.SavingsTips = savingsTips(s)
	s.UpdatedAt = now
	return s
}

// savingsTips generates threshold-based suggestions. Thresholds are
// percentages of monthly income; no income means no tips.
func savingsTips(s models.FinancialSummary) []models.SavingsTip {
	if s.MonthlyIncome <= 0 {
		return nil
	}

	var tips []models.SavingsTip
	pct := func(amount float64) float64 { return amount / s.MonthlyIncome * 100 }

	if rentPct := pct(s.Rent); rentPct > 30 {
		tips = append(tips, models.SavingsTip{
			Category: "Rent",
			Tip:      fmt.Sprintf("Your rent is %.1f%% of income. Consider finding cheaper housing.", rentPct),
			Severity: "high",
		})
	}
	if utilPct := pct(s.Utilities); utilPct > 10 {
		tips = append(tips, models.SavingsTip{
			Category: "Utilities",
			Tip:      fmt.Sprintf("Utilities are %.1f%% of income. Review energy consumption.", utilPct),
			Severity: "medium",
		})
	}
	if subsPct := pct(s.Subscriptions); subsPct > 5 {
		tips = append(tips, models.SavingsTip{
			Category: "Subscriptions",
			Tip:      fmt.Sprintf("Subscriptions are %.1f%% of income. Cancel unused services.", subsPct),
			Severity: "medium",
		})
	}

	switch {
	case s.DisposableIncome < 0:
		tips = append(tips, models.SavingsTip{
			Category: "Budget",
			Tip:      "You're spending more than you earn. Cut expenses immediately.",
			Severity: "critical",
		})
	case s.DisposableIncome < s.MonthlyIncome*0.1:
		tips = append(tips, models.SavingsTip{
			Category: "Savings",
			Tip:      "Try to save at least 10-20% of your income.",
			Severity: "medium",
		})
	}

	return tips
}
