package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/core"
)

func TestWeekly(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tx := func(typ core.TransactionType, cat, amt string, age time.Duration) core.Transaction {
		return core.Transaction{ID: cat + amt, Type: typ, Category: cat, Amount: decimal.RequireFromString(amt), Date: now.Add(-age)}
	}

	archived := tx(core.Expense, "Food", "999", time.Hour)
	archived.Archived = true

	txs := []core.Transaction{
		tx(core.Income, "Salary", "2000", 24*time.Hour),
		tx(core.Expense, "Food", "40.50", 2*24*time.Hour),
		tx(core.Expense, "food", "9.50", 3*24*time.Hour),
		tx(core.Expense, "Rent", "800", 6*24*time.Hour),
		tx(core.Expense, "Rent", "800", 7*24*time.Hour), // on the window edge, excluded
		tx(core.Expense, "Fuel", "50", 10*24*time.Hour),
		tx(core.Expense, "Future", "10", -time.Hour),
		archived,
	}

	r := Weekly(txs, now)

	assert.True(t, r.Income.Equal(decimal.NewFromInt(2000)))
	assert.True(t, r.Expense.Equal(decimal.NewFromInt(850)))
	assert.True(t, r.Net.Equal(decimal.NewFromInt(1150)))
	require.Len(t, r.ByCategory, 2)
	assert.Equal(t, "Rent", r.ByCategory[0].Name)
	assert.Equal(t, "Food", r.ByCategory[1].Name)
	assert.True(t, r.ByCategory[1].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, now.Add(-Window), r.Start)
}

func TestWeekly_Empty(t *testing.T) {
	r := Weekly(nil, time.Now())

	assert.True(t, r.Income.IsZero())
	assert.True(t, r.Net.IsZero())
	assert.Empty(t, r.ByCategory)
}
