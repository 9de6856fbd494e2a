package period

import (
	"time"

	"fortis/internal/core"
)

// State of a budget's reset checkpoint relative to the evaluation time.
type State int

const (
	Current State = iota
	Stale
)

func (s State) String() string {
	if s == Stale {
		return "stale"
	}
	return "current"
}

// Evaluate reports whether the budget's checkpoint falls in a different
// (month, year) than now. A zero checkpoint is always stale.
func Evaluate(b core.Budget, now time.Time) State {
	if b.LastReset.IsZero() {
		return Stale
	}
	last := b.LastReset.In(now.Location())
	if last.Year() != now.Year() || last.Month() != now.Month() {
		return Stale
	}
	return Current
}

// Advance returns the budget with its checkpoint moved to now when stale.
// The second result reports whether a reset happened. Evaluating again within
// the same month is a no-op, so repeated calls are idempotent.
func Advance(b core.Budget, now time.Time) (core.Budget, bool) {
	if Evaluate(b, now) == Current {
		return b, false
	}
	b.LastReset = now
	return b, true
}

// ResetPlan is the outcome of evaluating every budget of a user.
type ResetPlan struct {
	// Budgets is the full list with stale checkpoints advanced.
	Budgets []core.Budget
	// ResetIDs lists the ids (or categories when unset) of advanced budgets.
	ResetIDs []string
}

// Changed reports whether any budget needs persisting.
func (p ResetPlan) Changed() bool {
	return len(p.ResetIDs) > 0
}

// AdvanceAll applies Advance to every budget without mutating the input.
func AdvanceAll(budgets []core.Budget, now time.Time) ResetPlan {
	plan := ResetPlan{Budgets: make([]core.Budget, len(budgets))}
	for i, b := range budgets {
		next, reset := Advance(b, now)
		plan.Budgets[i] = next
		if !reset {
			continue
		}
		key := b.ID
		if key == "" {
			key = b.Category
		}
		plan.ResetIDs = append(plan.ResetIDs, key)
	}
	return plan
}
