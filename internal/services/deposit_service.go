package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortis/internal/amqp"
	"fortis/internal/core"
	flog "fortis/internal/log"
	"fortis/internal/shield"
	"fortis/internal/store"
)

// DepositResult is a partition plus what happened when it was committed.
type DepositResult struct {
	shield.Result
	// Applied lists the amounts credited to vaults. Empty for previews.
	Applied []shield.Allocation
	// Skipped holds requested vault ids missing from the snapshot or the store.
	Skipped []string
	// Failed holds vault ids whose balance write failed.
	Failed  []string
	Durable bool
}

// DepositService partitions income deposits across savings vaults.
type DepositService struct {
	vaults store.VaultStore
	events EventPublisher
}

func NewDepositService(vaults store.VaultStore, events EventPublisher) *DepositService {
	return &DepositService{vaults: vaults, events: events}
}

// Preview partitions amount without writing anything. vaultIDs selects and
// orders the vaults; empty means every vault in stored order.
func (s *DepositService) Preview(ctx context.Context, userID string, amount decimal.Decimal, vaultIDs []string) (DepositResult, error) {
	res, _, err := s.plan(ctx, userID, amount, vaultIDs)
	return res, err
}

// Commit partitions amount and credits each vault's balance. Writes are
// independent: a failed write leaves earlier credits in place and marks the
// result not durable. Credited amounts never add up to more than the deposit.
// After a commit ShieldedTotal and SpendableTotal describe what was credited;
// Allocations still holds the plan.
func (s *DepositService) Commit(ctx context.Context, userID string, amount decimal.Decimal, vaultIDs []string) (DepositResult, error) {
	res, vaults, err := s.plan(ctx, userID, amount, vaultIDs)
	if err != nil {
		return res, err
	}

	balances := make(map[string]decimal.Decimal, len(vaults))
	for _, v := range vaults {
		balances[v.ID] = core.SafeAmount(v.CurrentBalance)
	}

	var errs []error
	for _, a := range res.Funded() {
		if !a.Allocated.IsPositive() {
			continue
		}
		next := balances[a.VaultID].Add(a.Allocated)
		if err := s.vaults.SaveVaultBalance(ctx, userID, a.VaultID, next); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				res.Skipped = append(res.Skipped, a.VaultID)
				continue
			}
			slog.ErrorContext(ctx, "Failed to credit vault", flog.NewFields().
				WithUser(userID).WithVault(a.VaultID).WithAmount(a.Allocated).WithError(err).ToSlice()...)
			res.Failed = append(res.Failed, a.VaultID)
			errs = append(errs, store.Fail("save vault balance", err))
			continue
		}
		res.Applied = append(res.Applied, a)
	}

	credited := decimal.Zero
	for _, a := range res.Applied {
		credited = credited.Add(a.Allocated)
	}
	res.ShieldedTotal = credited
	res.SpendableTotal = res.Deposit.Sub(credited)

	if len(errs) > 0 {
		res.Durable = false
		return res, errors.Join(errs...)
	}

	slog.InfoContext(ctx, "Deposit partitioned", flog.NewFields().
		WithUser(userID).WithAmount(res.Deposit).WithComponent(flog.ComponentDeposit).ToSlice()...)

	if s.events != nil {
		announced := res.Result
		announced.Allocations = res.Applied
		if err := s.events.PublishVaultAllocated(ctx, amqp.NewVaultAllocatedMessage(userID, announced)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish vault allocation", "user_id", userID, "error", err)
		}
	}
	return res, nil
}

func (s *DepositService) plan(ctx context.Context, userID string, amount decimal.Decimal, vaultIDs []string) (DepositResult, []core.SavingsVault, error) {
	if amount.IsNegative() {
		return DepositResult{}, nil, core.ErrNegativeAmount
	}
	vaults, err := s.vaults.FetchVaults(ctx, userID)
	if err != nil {
		return DepositResult{}, nil, store.Fail("fetch vaults", err)
	}

	ordered, skipped := selectVaults(vaults, vaultIDs)
	return DepositResult{
		Result:  shield.Partition(amount, ordered),
		Skipped: skipped,
		Durable: true,
	}, ordered, nil
}

// AutoFill suggests a greedy allocation over all of the user's vaults.
func (s *DepositService) AutoFill(ctx context.Context, userID string, amount decimal.Decimal) (shield.Suggestion, error) {
	if amount.IsNegative() {
		return shield.Suggestion{}, core.ErrNegativeAmount
	}
	vaults, err := s.vaults.FetchVaults(ctx, userID)
	if err != nil {
		return shield.Suggestion{}, store.Fail("fetch vaults", err)
	}
	return shield.AutoFill(amount, vaults), nil
}

// Vaults lists the user's vaults in allocation order.
func (s *DepositService) Vaults(ctx context.Context, userID string) ([]core.SavingsVault, error) {
	vaults, err := s.vaults.FetchVaults(ctx, userID)
	if err != nil {
		return nil, store.Fail("fetch vaults", err)
	}
	return vaults, nil
}

// SaveVault creates or updates a vault, assigning an id to new ones.
func (s *DepositService) SaveVault(ctx context.Context, userID string, v core.SavingsVault) (core.SavingsVault, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if err := v.Validate(); err != nil {
		return core.SavingsVault{}, err
	}
	if err := s.vaults.SaveVault(ctx, userID, v); err != nil {
		return core.SavingsVault{}, store.Fail("save vault", err)
	}
	return v, nil
}

// selectVaults orders vaults by the requested ids, dropping unknown ones.
func selectVaults(vaults []core.SavingsVault, ids []string) ([]core.SavingsVault, []string) {
	if len(ids) == 0 {
		return vaults, nil
	}
	byID := make(map[string]core.SavingsVault, len(vaults))
	for _, v := range vaults {
		byID[v.ID] = v
	}
	var (
		out     []core.SavingsVault
		skipped []string
	)
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := used[id]; dup {
			continue
		}
		used[id] = struct{}{}
		v, ok := byID[id]
		if !ok {
			skipped = append(skipped, id)
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
