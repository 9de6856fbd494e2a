package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// WeeklyReport summarizes the seven days ending at End.
type WeeklyReport struct {
	Start      time.Time
	End        time.Time
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Net        decimal.Decimal
	ByCategory []CategoryAmount
}

type budgetSeed struct {
	category string
	budgeted int64
	color    string
}

var defaultBudgetSeeds = []budgetSeed{
	{"Housing", 1000, "#3B82F6"},
	{"Food", 400, "#10B981"},
	{"Transportation", 300, "#F59E0B"},
	{"Utilities", 200, "#8B5CF6"},
	{"Entertainment", 150, "#EC4899"},
	{"Health", 200, "#06B6D4"},
	{"Shopping", 250, "#F97316"},
	{"Other", 100, "#6366F1"},
}

// DefaultBudgets returns the starter budget list for a new user. IDs are left
// empty for the store to assign.
func DefaultBudgets(now time.Time) []Budget {
	out := make([]Budget, len(defaultBudgetSeeds))
	for i, s := range defaultBudgetSeeds {
		out[i] = Budget{
			Category:  s.category,
			Budgeted:  decimal.NewFromInt(s.budgeted),
			Color:     s.color,
			LastReset: now,
		}
	}
	return out
}
