// Package memory is an in-process store used by tests and the dev backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
	"fortis/internal/store"
)

type Store struct {
	mu       sync.Mutex
	txs      map[string][]core.Transaction
	budgets  map[string][]core.Budget
	vaults   map[string][]core.SavingsVault
	settings map[string]core.AlertSettings
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:      map[string][]core.Transaction{},
		budgets:  map[string][]core.Budget{},
		vaults:   map[string][]core.SavingsVault{},
		settings: map[string]core.AlertSettings{},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) FetchTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs[userID]...), nil
}

func (s *Store) AddTransaction(_ context.Context, userID string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		return core.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.txs[userID] {
		if existing.ID == tx.ID {
			return fmt.Errorf("transaction %s: %w", tx.ID, store.ErrDuplicateID)
		}
	}
	s.txs[userID] = append(s.txs[userID], tx)
	return nil
}

func (s *Store) SetArchived(_ context.Context, userID, txID string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs[userID] {
		if s.txs[userID][i].ID == txID {
			s.txs[userID][i].Archived = archived
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", txID, store.ErrNotFound)
}

func (s *Store) DeleteTransaction(_ context.Context, userID, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.txs[userID]
	for i := range list {
		if list[i].ID == txID {
			s.txs[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", txID, store.ErrNotFound)
}

func (s *Store) FetchBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets[userID]...), nil
}

// SaveBudgets swaps the whole list under the lock, so readers see either the
// old list or the new one.
func (s *Store) SaveBudgets(_ context.Context, userID string, budgets []core.Budget) error {
	for _, b := range budgets {
		if b.ID == "" {
			return fmt.Errorf("budget %q: %w", b.Category, core.ErrEmptyID)
		}
	}
	next := append([]core.Budget(nil), budgets...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[userID] = next
	return nil
}

func (s *Store) FetchVaults(_ context.Context, userID string) ([]core.SavingsVault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.SavingsVault, len(s.vaults[userID]))
	for i, v := range s.vaults[userID] {
		out[i] = copyVault(v)
	}
	return out, nil
}

// SaveVault inserts or replaces a vault, keeping insertion order.
func (s *Store) SaveVault(_ context.Context, userID string, v core.SavingsVault) error {
	if err := v.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vaults[userID] {
		if s.vaults[userID][i].ID == v.ID {
			s.vaults[userID][i] = copyVault(v)
			return nil
		}
	}
	s.vaults[userID] = append(s.vaults[userID], copyVault(v))
	return nil
}

func (s *Store) SaveVaultBalance(_ context.Context, userID, vaultID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vaults[userID] {
		if s.vaults[userID][i].ID == vaultID {
			s.vaults[userID][i].CurrentBalance = balance
			return nil
		}
	}
	return fmt.Errorf("vault %s: %w", vaultID, store.ErrNotFound)
}

func (s *Store) FetchAlertSettings(_ context.Context, userID string) (core.AlertSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[userID]
	if !ok {
		return core.DefaultAlertSettings(), nil
	}
	return st.Clone(), nil
}

func (s *Store) SaveAlertSettings(_ context.Context, userID string, st core.AlertSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[userID] = st.Clone()
	return nil
}

// ListUserIDs returns every user with any record, sorted.
func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	for u := range s.txs {
		seen[u] = struct{}{}
	}
	for u := range s.budgets {
		seen[u] = struct{}{}
	}
	for u := range s.vaults {
		seen[u] = struct{}{}
	}
	for u := range s.settings {
		seen[u] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

func copyVault(v core.SavingsVault) core.SavingsVault {
	if v.Ceiling != nil {
		c := *v.Ceiling
		v.Ceiling = &c
	}
	return v
}
