package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fortis/internal/archive"
	"fortis/internal/core"
	"fortis/internal/store"
)

// TransactionService records transactions and lists them by visibility.
type TransactionService struct {
	txs    store.TransactionStore
	policy archive.Policy
	now    Clock
}

func NewTransactionService(txs store.TransactionStore, policy archive.Policy) *TransactionService {
	if policy.AfterDays <= 0 {
		policy = archive.Default()
	}
	return &TransactionService{txs: txs, policy: policy, now: time.Now}
}

// Add validates and stores a transaction, assigning an id when missing.
func (s *TransactionService) Add(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Archived = false
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.txs.AddTransaction(ctx, userID, tx); err != nil {
		return core.Transaction{}, store.Fail("add transaction", err)
	}
	return tx, nil
}

// Listing splits transactions by list visibility.
type Listing struct {
	Active   []core.Transaction
	Eligible []core.Transaction
	Archived []core.Transaction
}

// List classifies every transaction of the user.
func (s *TransactionService) List(ctx context.Context, userID string) (Listing, error) {
	txs, err := s.txs.FetchTransactions(ctx, userID)
	if err != nil {
		return Listing{}, store.Fail("fetch transactions", err)
	}
	now := s.now()
	var out Listing
	for _, tx := range txs {
		switch {
		case tx.Archived:
			out.Archived = append(out.Archived, tx)
		case s.policy.Classify(tx, now) == archive.Eligible:
			out.Eligible = append(out.Eligible, tx)
		default:
			out.Active = append(out.Active, tx)
		}
	}
	return out, nil
}
