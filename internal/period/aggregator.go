// Package period derives spend-to-date for budgets and decides when a
// budget's reset checkpoint must advance.
//
// Two spend policies coexist and produce different numbers whenever a
// budget's checkpoint lags the calendar:
//   - Rolling: spend since the budget's own LastReset checkpoint.
//   - Calendar: spend since the first day of the current calendar month.
//
// Callers pick one explicitly; the two are never merged.
package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
)

// Policy names a spend aggregation policy.
type Policy string

const (
	Rolling  Policy = "rolling"
	Calendar Policy = "calendar"
)

// SpendCalculator is the strategy interface for computing a budget's spend.
type SpendCalculator interface {
	// Spent returns the non-negative spend for budget over transactions,
	// evaluated at now.
	Spent(budget core.Budget, transactions []core.Transaction, now time.Time) decimal.Decimal
}

// RollingCalculator counts spend since the budget's LastReset checkpoint.
type RollingCalculator struct{}

func (RollingCalculator) Spent(b core.Budget, txs []core.Transaction, _ time.Time) decimal.Decimal {
	return SpentSinceReset(b, txs)
}

// CalendarCalculator counts spend since the first day of now's month.
type CalendarCalculator struct{}

func (CalendarCalculator) Spent(b core.Budget, txs []core.Transaction, now time.Time) decimal.Decimal {
	return SpentThisMonth(b, txs, now)
}

// ErrUnknownPolicy is returned for policy names without a calculator.
var ErrUnknownPolicy = errors.New("unknown spend policy")

var spendPolicies = map[Policy]SpendCalculator{
	Rolling:  RollingCalculator{},
	Calendar: CalendarCalculator{},
}

// GetCalculator returns the calculator registered for a policy.
func GetCalculator(p Policy) (SpendCalculator, error) {
	c, ok := spendPolicies[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, p)
	}
	return c, nil
}

// SpentSinceReset sums non-archived expense transactions in the budget's
// category dated at or after budget.LastReset. A zero LastReset counts the
// whole history.
func SpentSinceReset(b core.Budget, txs []core.Transaction) decimal.Decimal {
	cutoff := b.LastReset
	if cutoff.IsZero() {
		cutoff = time.Unix(0, 0)
	}
	return sumSince(b.Category, txs, cutoff)
}

// SpentThisMonth sums non-archived expense transactions in the budget's
// category dated at or after the first instant of now's calendar month,
// ignoring LastReset.
func SpentThisMonth(b core.Budget, txs []core.Transaction, now time.Time) decimal.Decimal {
	return sumSince(b.Category, txs, MonthStart(now))
}

// MonthStart returns midnight on the first day of t's month, in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func sumSince(category string, txs []core.Transaction, cutoff time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !counts(tx, category, cutoff) {
			continue
		}
		total = total.Add(core.SafeAmount(tx.Amount))
	}
	return total
}

func counts(tx core.Transaction, category string, cutoff time.Time) bool {
	if !tx.IsExpense() || tx.Archived || tx.Date.IsZero() {
		return false
	}
	if !core.SameCategory(tx.Category, category) {
		return false
	}
	return !tx.Date.Before(cutoff)
}

// WithSpend derives spend for every budget under the given policy.
func WithSpend(budgets []core.Budget, txs []core.Transaction, calc SpendCalculator, now time.Time) []core.BudgetWithSpend {
	out := make([]core.BudgetWithSpend, len(budgets))
	for i, b := range budgets {
		out[i] = core.BudgetWithSpend{Budget: b, Spent: calc.Spent(b, txs, now)}
	}
	return out
}
