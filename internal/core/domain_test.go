package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "t1",
		Date:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "groceries",
		Category:    "Food",
		Amount:      decimal.NewFromInt(12),
		Type:        Expense,
	}
	assert.NoError(t, good.Validate())

	zeroAmount := good
	zeroAmount.Amount = decimal.Zero
	assert.NoError(t, zeroAmount.Validate(), "zero amount is allowed")

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidTransactionType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tc.want)
		})
	}
}

func TestValidateBudgets(t *testing.T) {
	ok := []Budget{
		{Category: "Food", Budgeted: decimal.NewFromInt(100), Color: "#111111"},
		{Category: "Rent", Budgeted: decimal.Zero, Color: "#222222"},
	}
	assert.NoError(t, ValidateBudgets(ok))

	dupCategory := []Budget{
		{Category: "Food", Budgeted: decimal.NewFromInt(100)},
		{Category: " food ", Budgeted: decimal.NewFromInt(50)},
	}
	assert.ErrorIs(t, ValidateBudgets(dupCategory), ErrDuplicateCategory)

	dupColor := []Budget{
		{Category: "Food", Budgeted: decimal.NewFromInt(100), Color: "#3B82F6"},
		{Category: "Rent", Budgeted: decimal.NewFromInt(50), Color: "#3b82f6"},
	}
	assert.ErrorIs(t, ValidateBudgets(dupColor), ErrColorInUse)

	negative := []Budget{{Category: "Food", Budgeted: decimal.NewFromInt(-5)}}
	assert.ErrorIs(t, ValidateBudgets(negative), ErrNegativeAmount)

	empty := []Budget{{Category: "", Budgeted: decimal.NewFromInt(5)}}
	assert.ErrorIs(t, ValidateBudgets(empty), ErrEmptyCategory)
}

func TestAlertSettingsValidate(t *testing.T) {
	s := DefaultAlertSettings()
	assert.NoError(t, s.Validate())

	for _, threshold := range []int{49, 96, 0} {
		bad := s
		bad.BudgetWarningThreshold = threshold
		assert.ErrorIs(t, bad.Validate(), ErrThresholdRange, "threshold %d", threshold)
	}
	for _, threshold := range []int{50, 95} {
		edge := s
		edge.BudgetWarningThreshold = threshold
		assert.NoError(t, edge.Validate(), "threshold %d", threshold)
	}

	low := s
	low.LargeTransactionAmount = decimal.NewFromInt(99)
	assert.ErrorIs(t, low.Validate(), ErrLargeAmountTooLow)
}

func TestAlertSettingsClone(t *testing.T) {
	s := DefaultAlertSettings()
	s.DismissedAlertIDs["a"] = struct{}{}

	c := s.Clone()
	c.DismissedAlertIDs["b"] = struct{}{}

	assert.True(t, s.IsDismissed("a"))
	assert.False(t, s.IsDismissed("b"))
	assert.True(t, c.IsDismissed("b"))
}

func TestSavingsVaultValidate(t *testing.T) {
	ceiling := decimal.NewFromInt(-1)
	v := SavingsVault{ID: "v", Name: "Emergency", MonthlyTarget: decimal.NewFromInt(10)}
	assert.NoError(t, v.Validate())

	v.Ceiling = &ceiling
	assert.ErrorIs(t, v.Validate(), ErrNegativeCeiling)
}

func TestDefaultBudgets(t *testing.T) {
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	budgets := DefaultBudgets(now)

	assert.Len(t, budgets, 8)
	assert.NoError(t, ValidateBudgets(budgets))
	for _, b := range budgets {
		assert.True(t, b.LastReset.Equal(now))
		assert.Empty(t, b.ID)
	}
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrThresholdRange))
	assert.True(t, IsValidation(fmt.Errorf("budget 3: %w", ErrDuplicateCategory)))
	assert.False(t, IsValidation(errors.New("disk full")))
	assert.False(t, IsValidation(nil))
}
