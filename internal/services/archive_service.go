package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fortis/internal/archive"
	"fortis/internal/core"
	"fortis/internal/store"
)

// ArchiveService hides old transactions from the primary list.
type ArchiveService struct {
	txs    store.TransactionStore
	policy archive.Policy
	now    Clock
}

func NewArchiveService(txs store.TransactionStore, policy archive.Policy) *ArchiveService {
	if policy.AfterDays <= 0 {
		policy = archive.Default()
	}
	return &ArchiveService{txs: txs, policy: policy, now: time.Now}
}

// Eligible lists the user's archive-eligible transactions.
func (s *ArchiveService) Eligible(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, err := s.txs.FetchTransactions(ctx, userID)
	if err != nil {
		return nil, store.Fail("fetch transactions", err)
	}
	return s.policy.Eligible(txs, s.now()), nil
}

// Archive marks the given transactions archived. Each id is written
// separately and nothing is rolled back; the result reports exactly which
// ids were applied, skipped or failed.
func (s *ArchiveService) Archive(ctx context.Context, userID string, ids []string) (archive.BulkResult, error) {
	return s.setArchived(ctx, userID, ids, true)
}

// Restore clears the archived flag on the given transactions.
func (s *ArchiveService) Restore(ctx context.Context, userID string, ids []string) (archive.BulkResult, error) {
	return s.setArchived(ctx, userID, ids, false)
}

// ArchiveEligible archives everything the policy currently classifies as
// eligible.
func (s *ArchiveService) ArchiveEligible(ctx context.Context, userID string) (archive.BulkResult, error) {
	eligible, err := s.Eligible(ctx, userID)
	if err != nil {
		return archive.BulkResult{}, err
	}
	ids := make([]string, len(eligible))
	for i, tx := range eligible {
		ids[i] = tx.ID
	}
	return s.Archive(ctx, userID, ids)
}

// Purge permanently deletes every archived transaction of the user.
func (s *ArchiveService) Purge(ctx context.Context, userID string) (archive.BulkResult, error) {
	txs, err := s.txs.FetchTransactions(ctx, userID)
	if err != nil {
		return archive.BulkResult{}, store.Fail("fetch transactions", err)
	}

	var (
		res  archive.BulkResult
		errs []error
	)
	for _, tx := range txs {
		if !tx.Archived {
			continue
		}
		s.apply(ctx, &res, &errs, tx.ID, s.txs.DeleteTransaction(ctx, userID, tx.ID))
	}
	slog.InfoContext(ctx, "Archived transactions purged", "user_id", userID, "count", len(res.Applied))
	return res, errors.Join(errs...)
}

func (s *ArchiveService) setArchived(ctx context.Context, userID string, ids []string, archived bool) (archive.BulkResult, error) {
	txs, err := s.txs.FetchTransactions(ctx, userID)
	if err != nil {
		return archive.BulkResult{}, store.Fail("fetch transactions", err)
	}

	apply, skipped := archive.Plan(ids, txs, archived)
	res := archive.BulkResult{Skipped: skipped}
	var errs []error
	for _, id := range apply {
		s.apply(ctx, &res, &errs, id, s.txs.SetArchived(ctx, userID, id, archived))
	}

	slog.InfoContext(ctx, "Bulk archive applied",
		"user_id", userID,
		"archived", archived,
		"applied", len(res.Applied),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed))
	return res, errors.Join(errs...)
}

func (s *ArchiveService) apply(ctx context.Context, res *archive.BulkResult, errs *[]error, id string, err error) {
	switch {
	case err == nil:
		res.Applied = append(res.Applied, id)
	case errors.Is(err, store.ErrNotFound):
		res.Skipped = append(res.Skipped, id)
	default:
		slog.ErrorContext(ctx, "Transaction update failed", "transaction_id", id, "error", err)
		res.Failed = append(res.Failed, archive.Failure{ID: id, Err: err})
		*errs = append(*errs, store.Fail("update transaction", err))
	}
}
