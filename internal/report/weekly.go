// Package report builds periodic spending summaries from the transaction log.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
)

// Window is the length of a weekly report.
const Window = 7 * 24 * time.Hour

// Weekly summarizes non-archived transactions dated in (now-7d, now].
// Categories are grouped case-insensitively under the first spelling seen and
// ordered by amount descending, then name.
func Weekly(txs []core.Transaction, now time.Time) core.WeeklyReport {
	r := core.WeeklyReport{
		Start:   now.Add(-Window),
		End:     now,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	type bucket struct {
		name   string
		amount decimal.Decimal
	}
	buckets := map[string]*bucket{}

	for _, tx := range txs {
		if tx.Archived || tx.Date.IsZero() {
			continue
		}
		if !tx.Date.After(r.Start) || tx.Date.After(now) {
			continue
		}
		amount := core.SafeAmount(tx.Amount)
		switch tx.Type {
		case core.Income:
			r.Income = r.Income.Add(amount)
		case core.Expense:
			r.Expense = r.Expense.Add(amount)
			key := strings.ToLower(strings.TrimSpace(tx.Category))
			b, ok := buckets[key]
			if !ok {
				b = &bucket{name: strings.TrimSpace(tx.Category), amount: decimal.Zero}
				buckets[key] = b
			}
			b.amount = b.amount.Add(amount)
		}
	}

	r.Net = r.Income.Sub(r.Expense)
	for _, b := range buckets {
		r.ByCategory = append(r.ByCategory, core.CategoryAmount{Name: b.name, Amount: b.amount})
	}
	sort.Slice(r.ByCategory, func(i, j int) bool {
		a, b := r.ByCategory[i], r.ByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Name < b.Name
	})
	return r
}
