package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/alerts"
	"fortis/internal/core"
	"fortis/internal/store"
)

func newAlertFixture(t *testing.T) (*AlertService, *flakyStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	st := newFlakyStore()
	require.NoError(t, st.Store.SaveBudgets(ctx, "u1", []core.Budget{foodBudget(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))}))
	require.NoError(t, st.AddTransaction(ctx, "u1", expenseTx("t1", "Food", "85", time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC))))

	budgets := NewBudgetService(st, st, nil)
	budgets.now = fixedClock(now)
	svc := NewAlertService(budgets, st, st, alerts.NewSeenTracker(10, time.Hour))
	svc.now = fixedClock(now)
	return svc, st
}

func TestAlertService_FeedAndSeen(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAlertFixture(t)

	feed, err := svc.Feed(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.True(t, feed.Durable)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "budget-warning-food", feed.Items[0].ID)
	assert.Equal(t, core.Warning, feed.Items[0].Severity)
	assert.Equal(t, 1, feed.Unread)

	require.NoError(t, svc.MarkSeen(ctx, "u1", "s1"))

	feed, err = svc.Feed(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, feed.Unread)

	other, err := svc.Feed(ctx, "u1", "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, other.Unread, "seen state is per session")
}

func TestAlertService_DismissLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, st := newAlertFixture(t)

	_, err := svc.Dismiss(ctx, "u1", "budget-warning-food")
	require.NoError(t, err)

	feed, err := svc.Feed(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.True(t, feed.Items[0].Dismissed)
	assert.Equal(t, 0, feed.Unread)

	_, err = svc.Dismiss(ctx, "u1", alerts.AllClearID)
	assert.ErrorIs(t, err, alerts.ErrNotDismissible)

	_, err = svc.ClearDismissed(ctx, "u1")
	require.NoError(t, err)
	feed, err = svc.Feed(ctx, "u1", "")
	require.NoError(t, err)
	assert.False(t, feed.Items[0].Dismissed)

	settings, err := svc.DismissAll(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, settings.IsDismissed("budget-warning-food"))

	stored, err := st.FetchAlertSettings(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, stored.IsDismissed("budget-warning-food"))
}

func TestAlertService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAlertFixture(t)
	_, err := svc.Dismiss(ctx, "u1", "budget-warning-food")
	require.NoError(t, err)

	next := core.DefaultAlertSettings()
	next.BudgetWarningThreshold = 90
	saved, err := svc.UpdateSettings(ctx, "u1", next)
	require.NoError(t, err)
	assert.True(t, saved.IsDismissed("budget-warning-food"), "dismissals survive a settings update")

	feed, err := svc.Feed(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, alerts.AllClearID, feed.Items[0].ID)

	next.BudgetWarningThreshold = 40
	_, err = svc.UpdateSettings(ctx, "u1", next)
	assert.ErrorIs(t, err, core.ErrThresholdRange)
}

func TestAlertService_FailedResetStillBuildsFeed(t *testing.T) {
	ctx := context.Background()
	svc, st := newAlertFixture(t)
	svc.budgets.now = fixedClock(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	st.failSaveBudgets = true

	feed, err := svc.Feed(ctx, "u1", "")
	assert.ErrorIs(t, err, store.ErrStore)
	assert.False(t, feed.Durable)
	require.NotEmpty(t, feed.Items)
	assert.Equal(t, "budget-warning-food", feed.Items[0].ID)
}
