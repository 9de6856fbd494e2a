package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/amqp"
	"fortis/internal/core"
	"fortis/internal/store"
	"fortis/internal/store/memory"
)

var errDisk = errors.New("disk unavailable")

// flakyStore wraps the memory store and fails selected writes.
type flakyStore struct {
	*memory.Store
	failSaveBudgets bool
	failVaults      map[string]bool
	failArchive     map[string]bool
	budgetSaves     int
	// honorCancel makes budget reads fail once ctx is done, like a real driver.
	honorCancel bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.New(), failVaults: map[string]bool{}, failArchive: map[string]bool{}}
}

func (f *flakyStore) FetchBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	if f.honorCancel && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return f.Store.FetchBudgets(ctx, userID)
}

func (f *flakyStore) SaveBudgets(ctx context.Context, userID string, budgets []core.Budget) error {
	f.budgetSaves++
	if f.failSaveBudgets {
		return errDisk
	}
	return f.Store.SaveBudgets(ctx, userID, budgets)
}

func (f *flakyStore) SaveVaultBalance(ctx context.Context, userID, vaultID string, balance decimal.Decimal) error {
	if f.failVaults[vaultID] {
		return errDisk
	}
	return f.Store.SaveVaultBalance(ctx, userID, vaultID, balance)
}

func (f *flakyStore) SetArchived(ctx context.Context, userID, txID string, archived bool) error {
	if f.failArchive[txID] {
		return errDisk
	}
	return f.Store.SetArchived(ctx, userID, txID, archived)
}

// vanishingVaults reports one vault as deleted between planning and crediting.
type vanishingVaults struct {
	*flakyStore
	gone string
}

func (v vanishingVaults) SaveVaultBalance(ctx context.Context, userID, vaultID string, balance decimal.Decimal) error {
	if vaultID == v.gone {
		return fmt.Errorf("vault %s: %w", vaultID, store.ErrNotFound)
	}
	return v.flakyStore.SaveVaultBalance(ctx, userID, vaultID, balance)
}

type recordingPublisher struct {
	mu        sync.Mutex
	resets    []*amqp.BudgetResetMessage
	vaults    []*amqp.VaultAllocatedMessage
	reports   []*amqp.WeeklyReportMessage
	failAfter error
}

func (p *recordingPublisher) PublishBudgetReset(_ context.Context, msg *amqp.BudgetResetMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets = append(p.resets, msg)
	return p.failAfter
}

func (p *recordingPublisher) PublishVaultAllocated(_ context.Context, msg *amqp.VaultAllocatedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vaults = append(p.vaults, msg)
	return p.failAfter
}

func (p *recordingPublisher) PublishWeeklyReport(_ context.Context, msg *amqp.WeeklyReportMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, msg)
	return p.failAfter
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expenseTx(id, category, amount string, date time.Time) core.Transaction {
	return core.Transaction{ID: id, Date: date, Description: "purchase " + id, Category: category, Amount: dec(amount), Type: core.Expense}
}
