package models

import "time"

// FinancialInput holds the user-entered monthly income and expense figures.
// Nil fields are left unchanged on update.
type FinancialInput struct {
	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
	Rent          *float64 `json:"rent,omitempty"`
	Utilities     *float64 `json:"utilities,omitempty"`
	Tuition       *float64 `json:"tuition,omitempty"`
	Loans         *float64 `json:"loans,omitempty"`
	Insurance     *float64 `json:"insurance,omitempty"`
	Subscriptions *float64 `json:"subscriptions,omitempty"`
	OtherExpenses *float64 `json:"other_expenses,omitempty"`
}

// SavingsTip is one generated budgeting suggestion.
type SavingsTip struct {
	Category string `json:"category"`
	Tip      string `json:"tip"`
	Severity string `json:"severity"`
}

// FinancialSummary is the dashboard record for one user: raw figures plus
// the derived totals, highest expense category, and generated tips.
type FinancialSummary struct {
	UserID        string  `json:"user_id"`
	MonthlyIncome float64 `json:"monthly_income"`
	Rent          float64 `json:"rent"`
	Utilities     float64 `json:"utilities"`
	Tuition       float64 `json:"tuition"`
	Loans         float64 `json:"loans"`
	Insurance     float64 `json:"insurance"`
	Subscriptions float64 `json:"subscriptions"`
	OtherExpenses float64 `json:"other_expenses"`

	TotalExpenses    float64 `json:"total_expenses"`
	DisposableIncome float64 `json:"disposable_income"`

	HighestCategory string       `json:"highest_category,omitempty"`
	HighestAmount   float64      `json:"highest_amount"`
	SavingsTips     []SavingsTip `json:"savings_tips,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ExportBundle is the full takeout of one user's data.
type ExportBundle struct {
	Profile  Profile           `json:"profile"`
	Metrics  []Metric          `json:"metrics"`
	Summary  *FinancialSummary `json:"financial_summary,omitempty"`
	Analysis *UnifiedAnalysis  `json:"analysis,omitempty"`
}
