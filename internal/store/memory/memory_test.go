package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/core"
	"fortis/internal/store"
)

func TestStore_Transactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx := core.Transaction{ID: "t1", Date: time.Now(), Description: "lunch", Category: "Food", Amount: decimal.NewFromInt(12), Type: core.Expense}

	require.NoError(t, s.AddTransaction(ctx, "u1", tx))
	assert.ErrorIs(t, s.AddTransaction(ctx, "u1", tx), store.ErrDuplicateID)
	require.NoError(t, s.SetArchived(ctx, "u1", "t1", true))

	got, err := s.FetchTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Archived)

	assert.ErrorIs(t, s.SetArchived(ctx, "u1", "nope", true), store.ErrNotFound)
	assert.ErrorIs(t, s.SetArchived(ctx, "u2", "t1", true), store.ErrNotFound)
	require.NoError(t, s.AddTransaction(ctx, "u2", tx), "ids are per user")

	require.NoError(t, s.DeleteTransaction(ctx, "u1", "t1"))
	got, _ = s.FetchTransactions(ctx, "u1")
	assert.Empty(t, got)

	tx.Amount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, s.AddTransaction(ctx, "u1", tx), core.ErrNegativeAmount)
}

func TestStore_SaveBudgetsReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveBudgets(ctx, "u1", []core.Budget{{ID: "a", Category: "Food"}, {ID: "b", Category: "Rent"}}))
	require.NoError(t, s.SaveBudgets(ctx, "u1", []core.Budget{{ID: "b", Category: "Rent"}}))

	got, err := s.FetchBudgets(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{{ID: "b", Category: "Rent"}}, got)

	assert.ErrorIs(t, s.SaveBudgets(ctx, "u1", []core.Budget{{Category: "x"}}), core.ErrEmptyID)
	got, _ = s.FetchBudgets(ctx, "u1")
	assert.Len(t, got, 1, "failed save must not touch the list")
}

func TestStore_Vaults(t *testing.T) {
	ctx := context.Background()
	s := New()
	ceil := decimal.NewFromInt(500)

	require.NoError(t, s.SaveVault(ctx, "u1", core.SavingsVault{ID: "v1", Name: "Rainy day", MonthlyTarget: decimal.NewFromInt(100), Ceiling: &ceil}))
	require.NoError(t, s.SaveVaultBalance(ctx, "u1", "v1", decimal.NewFromInt(250)))
	assert.ErrorIs(t, s.SaveVaultBalance(ctx, "u1", "v9", decimal.Zero), store.ErrNotFound)
	assert.ErrorIs(t, s.SaveVaultBalance(ctx, "u2", "v1", decimal.Zero), store.ErrNotFound)

	got, err := s.FetchVaults(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].CurrentBalance.Equal(decimal.NewFromInt(250)))

	*got[0].Ceiling = decimal.Zero
	again, _ := s.FetchVaults(ctx, "u1")
	assert.True(t, again[0].Ceiling.Equal(ceil))
}

func TestStore_SettingsAndUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	st, err := s.FetchAlertSettings(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultAlertSettings(), st)

	st.DismissedAlertIDs["x"] = struct{}{}
	require.NoError(t, s.SaveAlertSettings(ctx, "u2", st))
	got, _ := s.FetchAlertSettings(ctx, "u2")
	assert.True(t, got.IsDismissed("x"))

	require.NoError(t, s.SaveBudgets(ctx, "u1", nil))
	users, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}
