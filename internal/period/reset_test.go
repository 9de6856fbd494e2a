package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fortis/internal/core"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lastReset time.Time
		want      State
	}{
		{"same month", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Current},
		{"previous month", time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC), Stale},
		{"same month previous year", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), Stale},
		{"zero checkpoint", time.Time{}, Stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(core.Budget{LastReset: tt.lastReset}, now)
			assert.Equal(t, tt.want, got, "state %s", got)
		})
	}
}

func TestAdvance_SetsFullTimestamp(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 45, 0, time.UTC)
	b := core.Budget{ID: "b", Category: "Food", LastReset: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)}

	next, reset := Advance(b, now)

	assert.True(t, reset)
	assert.True(t, next.LastReset.Equal(now), "checkpoint is the evaluation instant, not the month boundary")
}

func TestAdvance_Idempotent(t *testing.T) {
	first := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	later := time.Date(2025, 3, 28, 22, 0, 0, 0, time.UTC)
	b := core.Budget{ID: "b", Category: "Food", LastReset: time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)}

	once, reset1 := Advance(b, first)
	twice, reset2 := Advance(once, later)

	assert.True(t, reset1)
	assert.False(t, reset2)
	assert.True(t, once.LastReset.Equal(twice.LastReset))
}

func TestAdvanceAll(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	budgets := []core.Budget{
		{ID: "fresh", Category: "A", LastReset: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "old", Category: "B", LastReset: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Category: "Legacy"},
	}

	plan := AdvanceAll(budgets, now)

	assert.True(t, plan.Changed())
	assert.Equal(t, []string{"old", "Legacy"}, plan.ResetIDs)
	assert.True(t, plan.Budgets[1].LastReset.Equal(now))
	assert.True(t, plan.Budgets[2].LastReset.Equal(now))
	assert.True(t, budgets[1].LastReset.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)), "input untouched")

	again := AdvanceAll(plan.Budgets, now.Add(time.Hour))
	assert.False(t, again.Changed())
}

func TestResetZeroesVisibleSpend(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	b := core.Budget{ID: "b", Category: "Food", LastReset: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	txs := []core.Transaction{expense("t", "Food", "80", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))}

	assert.False(t, SpentSinceReset(b, txs).IsZero())

	next, _ := Advance(b, now)
	assert.True(t, SpentSinceReset(next, txs).IsZero())
}
