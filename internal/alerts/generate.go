// Package alerts turns budget state and recent transactions into a
// deduplicated alert feed with stable ids, and tracks which alerts the user
// dismissed or has already seen.
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
)

// AllClearID identifies the synthetic alert shown when nothing else fires.
const AllClearID = "all-clear"

// RecentLargeLimit caps how many large transactions are reported.
const RecentLargeLimit = 3

var hundred = decimal.NewFromInt(100)

// ExceededID returns the stable id of a budget's exceeded alert.
func ExceededID(b core.Budget, index int) string {
	return "budget-exceeded-" + budgetKey(b, index)
}

// WarningID returns the stable id of a budget's warning alert.
func WarningID(b core.Budget, index int) string {
	return "budget-warning-" + budgetKey(b, index)
}

// LargeTransactionID returns the stable id of a large-transaction alert.
func LargeTransactionID(tx core.Transaction) string {
	return "large-transaction-" + tx.ID
}

// budgetKey falls back to the budget's position for records without an id.
func budgetKey(b core.Budget, index int) string {
	if b.ID != "" {
		return b.ID
	}
	return fmt.Sprintf("category-%d", index)
}

// Generate evaluates every rule and returns the full alert list in a stable
// order: budget alerts in budget order, then large transactions newest first.
// Dismissed alerts stay in the list with Dismissed set. When no rule fires
// the list holds a single all-clear alert.
func Generate(budgets []core.BudgetWithSpend, txs []core.Transaction, settings core.AlertSettings, now time.Time) []core.AlertItem {
	var items []core.AlertItem

	for i, b := range budgets {
		if item, ok := budgetAlert(b, i, settings, now); ok {
			items = append(items, item)
		}
	}

	if settings.LargeTransactionEnabled {
		for _, tx := range recentLarge(txs, settings.LargeTransactionAmount) {
			items = append(items, core.AlertItem{
				ID:          LargeTransactionID(tx),
				Severity:    core.Info,
				Title:       "Large Transaction",
				Description: fmt.Sprintf("%s spent on %s", core.FormatDollars(tx.Amount), tx.Description),
				Timestamp:   tx.Date,
			})
		}
	}

	if len(items) == 0 {
		return []core.AlertItem{{
			ID:          AllClearID,
			Severity:    core.Success,
			Title:       "All Clear",
			Description: "No alerts at this time. Keep up the good work!",
			Timestamp:   now,
		}}
	}

	for i := range items {
		items[i].Dismissed = settings.IsDismissed(items[i].ID)
	}
	return items
}

// budgetAlert applies the exceeded-then-warning rules to a single budget.
// At most one alert is produced per budget.
func budgetAlert(b core.BudgetWithSpend, index int, settings core.AlertSettings, now time.Time) (core.AlertItem, bool) {
	budgeted := core.SafeAmount(b.Budgeted)
	if budgeted.IsZero() {
		return core.AlertItem{}, false
	}
	spent := core.SafeAmount(b.Spent)

	if spent.GreaterThan(budgeted) {
		if !settings.BudgetExceededEnabled {
			return core.AlertItem{}, false
		}
		return core.AlertItem{
			ID:          ExceededID(b.Budget, index),
			Severity:    core.Danger,
			Title:       "Budget Exceeded",
			Description: fmt.Sprintf("%s: %s over budget", b.Category, core.FormatDollars(spent.Sub(budgeted))),
			Timestamp:   now,
		}, true
	}

	if !settings.BudgetWarningEnabled {
		return core.AlertItem{}, false
	}
	pct := UsagePercent(spent, budgeted)
	if pct.LessThan(decimal.NewFromInt(int64(settings.BudgetWarningThreshold))) || !pct.LessThan(hundred) {
		return core.AlertItem{}, false
	}
	return core.AlertItem{
		ID:          WarningID(b.Budget, index),
		Severity:    core.Warning,
		Title:       "Budget Warning",
		Description: fmt.Sprintf("%s: %s%% of budget used", b.Category, pct.StringFixed(0)),
		Timestamp:   now,
	}, true
}

// UsagePercent returns spent/budgeted*100. Budgeted must be positive.
func UsagePercent(spent, budgeted decimal.Decimal) decimal.Decimal {
	return spent.Mul(hundred).Div(budgeted)
}

// recentLarge returns up to RecentLargeLimit expense transactions at or above
// the threshold, most recent first.
func recentLarge(txs []core.Transaction, threshold decimal.Decimal) []core.Transaction {
	var large []core.Transaction
	for _, tx := range txs {
		if !tx.IsExpense() || tx.ID == "" || tx.Date.IsZero() {
			continue
		}
		if core.SafeAmount(tx.Amount).LessThan(threshold) {
			continue
		}
		large = append(large, tx)
	}
	sort.SliceStable(large, func(i, j int) bool {
		return large[i].Date.After(large[j].Date)
	})
	if len(large) > RecentLargeLimit {
		large = large[:RecentLargeLimit]
	}
	return large
}
