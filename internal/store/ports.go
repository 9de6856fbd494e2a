// Package store defines the persistence ports the services depend on.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionStore interface {
		FetchTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		// AddTransaction rejects an id the user already has with ErrDuplicateID.
		AddTransaction(ctx context.Context, userID string, tx core.Transaction) error
		// SetArchived toggles list visibility. Unknown ids return ErrNotFound.
		SetArchived(ctx context.Context, userID, txID string, archived bool) error
		DeleteTransaction(ctx context.Context, userID, txID string) error
	}

	BudgetStore interface {
		FetchBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		// SaveBudgets replaces the user's budget list in one atomic step.
		// Budgets missing from the list are deleted.
		SaveBudgets(ctx context.Context, userID string, budgets []core.Budget) error
	}

	VaultStore interface {
		FetchVaults(ctx context.Context, userID string) ([]core.SavingsVault, error)
		SaveVault(ctx context.Context, userID string, v core.SavingsVault) error
		// SaveVaultBalance sets the balance of one of the user's vaults.
		// Vault ids are scoped to their owner; another user's id is ErrNotFound.
		SaveVaultBalance(ctx context.Context, userID, vaultID string, balance decimal.Decimal) error
	}

	SettingsStore interface {
		// FetchAlertSettings returns core.DefaultAlertSettings for users who
		// never saved any.
		FetchAlertSettings(ctx context.Context, userID string) (core.AlertSettings, error)
		SaveAlertSettings(ctx context.Context, userID string, s core.AlertSettings) error
	}

	// UserLister enumerates users with any stored record, for worker sweeps.
	UserLister interface {
		ListUserIDs(ctx context.Context) ([]string, error)
	}

	// Store is the full set of ports a backend provides.
	Store interface {
		TransactionStore
		BudgetStore
		VaultStore
		SettingsStore
		UserLister
		Close() error
	}
)

var (
	// ErrStore matches every persistence failure.
	ErrStore = errors.New("store failure")
	// ErrNotFound is returned for ids the store does not know. It does not
	// match ErrStore: callers treat it as an inconsistent snapshot.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when a record id is already taken by the
	// same user. Like ErrNotFound it does not match ErrStore.
	ErrDuplicateID = errors.New("duplicate record id")
)

// StoreError wraps a persistence failure with the operation that caused it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// Fail wraps err as a StoreError. Nil, not-found and duplicate-id errors
// pass through.
func Fail(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateID) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
