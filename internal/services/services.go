// Package services orchestrates the ledger engine against the stores: it
// loads snapshots, runs the pure engine packages and persists the results.
package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fortis/internal/amqp"
	"fortis/internal/core"
	"fortis/internal/store"
)

// EventPublisher sends ledger events. *amqp.Client implements it.
type EventPublisher interface {
	PublishBudgetReset(ctx context.Context, msg *amqp.BudgetResetMessage) error
	PublishVaultAllocated(ctx context.Context, msg *amqp.VaultAllocatedMessage) error
	PublishWeeklyReport(ctx context.Context, msg *amqp.WeeklyReportMessage) error
}

var _ EventPublisher = (*amqp.Client)(nil)

// Clock returns the evaluation time.
type Clock func() time.Time

// Snapshot is an immutable view of one user's records.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Vaults       []core.SavingsVault
	Settings     core.AlertSettings
}

// Loader fetches snapshots, running the store reads concurrently.
type Loader struct {
	Transactions store.TransactionStore
	Budgets      store.BudgetStore
	Vaults       store.VaultStore
	Settings     store.SettingsStore
}

func NewLoader(s store.Store) *Loader {
	return &Loader{Transactions: s, Budgets: s, Vaults: s, Settings: s}
}

// Load reads every part of the snapshot that has a store configured.
func (l *Loader) Load(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	if l.Transactions != nil {
		g.Go(func() error {
			txs, err := l.Transactions.FetchTransactions(ctx, userID)
			snap.Transactions = txs
			return store.Fail("fetch transactions", err)
		})
	}
	if l.Budgets != nil {
		g.Go(func() error {
			budgets, err := l.Budgets.FetchBudgets(ctx, userID)
			snap.Budgets = budgets
			return store.Fail("fetch budgets", err)
		})
	}
	if l.Vaults != nil {
		g.Go(func() error {
			vaults, err := l.Vaults.FetchVaults(ctx, userID)
			snap.Vaults = vaults
			return store.Fail("fetch vaults", err)
		})
	}
	if l.Settings != nil {
		g.Go(func() error {
			settings, err := l.Settings.FetchAlertSettings(ctx, userID)
			snap.Settings = settings
			return store.Fail("fetch alert settings", err)
		})
	} else {
		snap.Settings = core.DefaultAlertSettings()
	}

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
