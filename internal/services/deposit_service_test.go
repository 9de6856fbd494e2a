package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/core"
	"fortis/internal/store"
)

func ceiling(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func seedVaults(t *testing.T, st *flakyStore, vaults ...core.SavingsVault) {
	t.Helper()
	for _, v := range vaults {
		require.NoError(t, st.SaveVault(context.Background(), "u1", v))
	}
}

func balances(t *testing.T, st *flakyStore) map[string]string {
	t.Helper()
	vaults, err := st.FetchVaults(context.Background(), "u1")
	require.NoError(t, err)
	out := map[string]string{}
	for _, v := range vaults {
		out[v.ID] = v.CurrentBalance.StringFixed(2)
	}
	return out
}

func TestDepositService_Commit(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	pub := &recordingPublisher{}
	seedVaults(t, st,
		core.SavingsVault{ID: "emergency", Name: "Emergency", MonthlyTarget: dec("300"), CurrentBalance: dec("900"), Ceiling: ceiling("1000")},
		core.SavingsVault{ID: "travel", Name: "Travel", MonthlyTarget: dec("200")},
	)
	svc := NewDepositService(st, pub)

	res, err := svc.Commit(ctx, "u1", dec("1000"), nil)
	require.NoError(t, err)

	assert.True(t, res.Durable)
	assert.True(t, res.ShieldedTotal.Equal(dec("300")))
	assert.True(t, res.SpendableTotal.Equal(dec("700")))
	require.Len(t, res.Allocations, 2)
	assert.True(t, res.Allocations[0].Capped)
	assert.True(t, res.Allocations[0].Allocated.Equal(dec("100")))
	assert.Equal(t, map[string]string{"emergency": "1000.00", "travel": "200.00"}, balances(t, st))
	assert.Len(t, pub.vaults, 1)
}

func TestDepositService_PreviewWritesNothing(t *testing.T) {
	st := newFlakyStore()
	seedVaults(t, st, core.SavingsVault{ID: "travel", Name: "Travel", MonthlyTarget: dec("200")})
	svc := NewDepositService(st, nil)

	res, err := svc.Preview(context.Background(), "u1", dec("500"), nil)
	require.NoError(t, err)
	assert.True(t, res.ShieldedTotal.Equal(dec("200")))
	assert.Empty(t, res.Applied)
	assert.Equal(t, map[string]string{"travel": "0.00"}, balances(t, st))

	_, err = svc.Preview(context.Background(), "u1", dec("-1"), nil)
	assert.ErrorIs(t, err, core.ErrNegativeAmount)
}

func TestDepositService_OvercommitCreditsOnlyTheDeposit(t *testing.T) {
	st := newFlakyStore()
	pub := &recordingPublisher{}
	seedVaults(t, st,
		core.SavingsVault{ID: "a", Name: "A", MonthlyTarget: dec("200")},
		core.SavingsVault{ID: "b", Name: "B", MonthlyTarget: dec("200")},
		core.SavingsVault{ID: "c", Name: "C", MonthlyTarget: dec("200")},
	)
	svc := NewDepositService(st, pub)

	res, err := svc.Commit(context.Background(), "u1", dec("250"), nil)
	require.NoError(t, err)

	assert.True(t, res.Overcommitted)
	assert.True(t, res.ShieldedTotal.Equal(dec("250")))
	assert.True(t, res.SpendableTotal.IsZero())
	assert.Equal(t, map[string]string{"a": "200.00", "b": "50.00", "c": "0.00"}, balances(t, st))

	require.Len(t, pub.vaults, 1)
	msg := pub.vaults[0]
	assert.True(t, msg.Shielded.Equal(dec("250")))
	credited := map[string]string{}
	total := decimal.Zero
	for _, a := range msg.Allocations {
		credited[a.VaultID] = a.Amount.StringFixed(2)
		total = total.Add(a.Amount)
	}
	assert.Equal(t, map[string]string{"a": "200.00", "b": "50.00"}, credited, "unfunded vaults are not announced")
	assert.True(t, total.Equal(dec("250")), "announced credits add up to the deposit")
}

func TestDepositService_TotalsFollowCredits(t *testing.T) {
	st := newFlakyStore()
	seedVaults(t, st,
		core.SavingsVault{ID: "a", Name: "A", MonthlyTarget: dec("100")},
		core.SavingsVault{ID: "b", Name: "B", MonthlyTarget: dec("100")},
	)
	svc := NewDepositService(vanishingVaults{flakyStore: st, gone: "b"}, nil)

	res, err := svc.Commit(context.Background(), "u1", dec("500"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, res.Skipped)
	require.Len(t, res.Applied, 1)
	assert.True(t, res.ShieldedTotal.Equal(dec("100")))
	assert.True(t, res.SpendableTotal.Equal(dec("400")))
}

func TestDepositService_SelectionAndFailures(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	pub := &recordingPublisher{}
	seedVaults(t, st,
		core.SavingsVault{ID: "a", Name: "A", MonthlyTarget: dec("50")},
		core.SavingsVault{ID: "b", Name: "B", MonthlyTarget: dec("50")},
	)
	st.failVaults["a"] = true
	svc := NewDepositService(st, pub)

	res, err := svc.Commit(ctx, "u1", dec("500"), []string{"b", "ghost", "a", "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStore)
	assert.False(t, res.Durable)
	assert.Equal(t, []string{"ghost"}, res.Skipped)
	assert.Equal(t, []string{"a"}, res.Failed)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "b", res.Applied[0].VaultID)
	assert.Equal(t, map[string]string{"a": "0.00", "b": "50.00"}, balances(t, st))
	assert.Empty(t, pub.vaults, "partial commits are not announced")
}

func TestDepositService_SaveVault(t *testing.T) {
	st := newFlakyStore()
	svc := NewDepositService(st, nil)

	v, err := svc.SaveVault(context.Background(), "u1", core.SavingsVault{Name: "Car", MonthlyTarget: dec("75")})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)

	_, err = svc.SaveVault(context.Background(), "u1", core.SavingsVault{Name: "Bad", Ceiling: ceiling("-5")})
	assert.ErrorIs(t, err, core.ErrNegativeCeiling)
}
