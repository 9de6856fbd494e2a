package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/core"
)

func TestBuildFeed_Unread(t *testing.T) {
	items := []core.AlertItem{
		{ID: "a", Severity: core.Danger},
		{ID: "b", Severity: core.Warning, Dismissed: true},
		{ID: "c", Severity: core.Info},
	}

	assert.Equal(t, 2, BuildFeed(items, nil).Unread)
	assert.Equal(t, 1, BuildFeed(items, map[string]struct{}{"c": {}}).Unread)

	allClear := BuildFeed([]core.AlertItem{{ID: AllClearID, Severity: core.Success}}, nil)
	assert.Zero(t, allClear.Unread)
	assert.Equal(t, []string{AllClearID}, allClear.IDs())
}

func TestDismiss(t *testing.T) {
	settings := core.DefaultAlertSettings()

	next, err := Dismiss(settings, "budget-warning-b1")
	require.NoError(t, err)
	assert.True(t, next.IsDismissed("budget-warning-b1"))
	assert.False(t, settings.IsDismissed("budget-warning-b1"), "input must not be mutated")

	_, err = Dismiss(settings, AllClearID)
	assert.ErrorIs(t, err, ErrNotDismissible)

	_, err = Dismiss(settings, "")
	assert.ErrorIs(t, err, core.ErrEmptyID)
}

func TestDismissAllAndClear(t *testing.T) {
	items := []core.AlertItem{{ID: "x"}, {ID: "y"}, {ID: AllClearID}}

	next := DismissAll(core.DefaultAlertSettings(), items)
	assert.Len(t, next.DismissedAlertIDs, 2)
	assert.False(t, next.IsDismissed(AllClearID))

	cleared := ClearDismissed(next)
	assert.Empty(t, cleared.DismissedAlertIDs)
	assert.Len(t, next.DismissedAlertIDs, 2)
}

func TestDismissal_ReappearsAfterClear(t *testing.T) {
	budgets := []core.BudgetWithSpend{withSpend("b1", "Food", "100", "120")}

	settings, err := Dismiss(quietSettings(), "budget-exceeded-b1")
	require.NoError(t, err)
	feed := BuildFeed(Generate(budgets, nil, settings, now), nil)
	assert.Zero(t, feed.Unread)

	feed = BuildFeed(Generate(budgets, nil, ClearDismissed(settings), now), nil)
	assert.Equal(t, 1, feed.Unread)
}
