// Package shield splits an income deposit between protected savings vaults
// and spendable funds.
package shield

import (
	"github.com/shopspring/decimal"

	"fortis/internal/core"
)

// Allocation is the amount assigned to one vault.
type Allocation struct {
	VaultID   string
	Allocated decimal.Decimal
	// Capped is set when the vault's ceiling limited or zeroed the allocation.
	Capped bool
}

// Result of partitioning a deposit.
type Result struct {
	Deposit        decimal.Decimal
	ShieldedTotal  decimal.Decimal
	SpendableTotal decimal.Decimal
	Allocations    []Allocation
	// Overcommitted is set when the per-vault allocations add up to more than
	// the deposit. ShieldedTotal is clamped to the deposit but the individual
	// allocations are left as computed.
	Overcommitted bool
}

// Partition computes how much of deposit is shielded, processing vaults in
// the order given. Each vault receives min(monthlyTarget, ceiling-balance),
// floored at zero. The total is clamped to the deposit once, at the end.
func Partition(deposit decimal.Decimal, vaults []core.SavingsVault) Result {
	deposit = core.SafeAmount(deposit)

	res := Result{
		Deposit:     deposit,
		Allocations: make([]Allocation, 0, len(vaults)),
	}

	ideal := decimal.Zero
	for _, v := range vaults {
		amount, capped := idealAllocation(v)
		ideal = ideal.Add(amount)
		res.Allocations = append(res.Allocations, Allocation{VaultID: v.ID, Allocated: amount, Capped: capped})
	}

	res.ShieldedTotal = decimal.Min(deposit, ideal)
	res.SpendableTotal = decimal.Max(decimal.Zero, deposit.Sub(res.ShieldedTotal))
	res.Overcommitted = ideal.GreaterThan(deposit)
	return res
}

// Funded returns the allocations that can actually be paid out of the
// deposit: vaults are funded in order and the running total never exceeds
// ShieldedTotal. Without overcommitment this equals Allocations.
func (r Result) Funded() []Allocation {
	remaining := r.ShieldedTotal
	out := make([]Allocation, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		give := decimal.Min(a.Allocated, remaining)
		if give.IsNegative() {
			give = decimal.Zero
		}
		remaining = remaining.Sub(give)
		out = append(out, Allocation{VaultID: a.VaultID, Allocated: give, Capped: a.Capped})
	}
	return out
}

// Suggestion is the greedy allocation offered while entering an income
// transaction. It never allocates more than the deposit.
type Suggestion struct {
	Allocations []Allocation
	Remaining   decimal.Decimal
}

// AutoFill funds each vault fully, in order, until the deposit runs out. The
// first vault that cannot be fully funded receives whatever is left and the
// walk stops there.
func AutoFill(deposit decimal.Decimal, vaults []core.SavingsVault) Suggestion {
	remaining := core.SafeAmount(deposit)
	out := Suggestion{Allocations: make([]Allocation, 0, len(vaults))}

	for _, v := range vaults {
		if !remaining.IsPositive() {
			break
		}
		need, capped := idealAllocation(v)
		if !need.IsPositive() {
			continue
		}
		give := decimal.Min(need, remaining)
		remaining = remaining.Sub(give)
		out.Allocations = append(out.Allocations, Allocation{VaultID: v.ID, Allocated: give, Capped: capped})
	}

	out.Remaining = remaining
	return out
}

// SpaceLeft reports how much more a vault can hold. The boolean is false for
// unbounded vaults.
func SpaceLeft(v core.SavingsVault) (decimal.Decimal, bool) {
	if v.Ceiling == nil {
		return decimal.Zero, false
	}
	return v.Ceiling.Sub(core.SafeAmount(v.CurrentBalance)), true
}

func idealAllocation(v core.SavingsVault) (decimal.Decimal, bool) {
	target := core.SafeAmount(v.MonthlyTarget)
	space, bounded := SpaceLeft(v)
	if !bounded {
		return target, false
	}
	if !space.IsPositive() {
		return decimal.Zero, true
	}
	if target.GreaterThan(space) {
		return space, true
	}
	return target, false
}
