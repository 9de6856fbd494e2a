package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"fortis/internal/amqp"
	"fortis/internal/core"
	flog "fortis/internal/log"
	"fortis/internal/period"
	"fortis/internal/store"
)

// ResetResult is the outcome of evaluating a user's reset checkpoints.
type ResetResult struct {
	// Budgets holds the checkpoints to display. When the reset could not be
	// persisted these are the old checkpoints, never optimistically advanced.
	Budgets  []core.Budget
	ResetIDs []string
	Durable  bool
}

// BudgetView is a user's budget list with derived spend.
type BudgetView struct {
	Budgets  []core.BudgetWithSpend
	Policy   period.Policy
	ResetIDs []string
	Durable  bool
}

// BudgetService owns budget lists and their period resets.
type BudgetService struct {
	budgets store.BudgetStore
	txs     store.TransactionStore
	events  EventPublisher
	now     Clock
	resets  singleflight.Group
}

// NewBudgetService wires the service. events may be nil.
func NewBudgetService(budgets store.BudgetStore, txs store.TransactionStore, events EventPublisher) *BudgetService {
	return &BudgetService{
		budgets: budgets,
		txs:     txs,
		events:  events,
		now:     time.Now,
	}
}

// ResetStale advances every stale checkpoint of the user and persists the
// list. Concurrent calls for the same user share one evaluation; redundant
// evaluations in the same month are no-ops.
func (s *BudgetService) ResetStale(ctx context.Context, userID string) (ResetResult, error) {
	// Callers share one evaluation, so it must outlive whichever request
	// happened to start it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.resets.Do(userID, func() (any, error) {
		return s.resetStale(shared, userID)
	})
	res, _ := v.(ResetResult)
	return res, err
}

func (s *BudgetService) resetStale(ctx context.Context, userID string) (ResetResult, error) {
	current, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return ResetResult{}, err
	}

	now := s.now()
	plan := period.AdvanceAll(current, now)
	if !plan.Changed() {
		return ResetResult{Budgets: current, Durable: true}, nil
	}

	logger := flog.NewStructuredLogger(flog.FromContext(ctx))
	if err := s.budgets.SaveBudgets(ctx, userID, plan.Budgets); err != nil {
		logger.LogReset(ctx, userID, plan.ResetIDs, false)
		return ResetResult{Budgets: current, Durable: false}, fmt.Errorf("persist budget reset: %w", store.Fail("save budgets", err))
	}
	logger.LogReset(ctx, userID, plan.ResetIDs, true)

	if s.events != nil {
		msg := amqp.NewBudgetResetMessage(userID, plan.ResetIDs, now)
		if err := s.events.PublishBudgetReset(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget reset", "user_id", userID, "error", err)
		}
	}

	return ResetResult{Budgets: plan.Budgets, ResetIDs: plan.ResetIDs, Durable: true}, nil
}

// View resets stale budgets and derives spend under policy. On a failed reset
// write the view is still returned, built from the old checkpoints, together
// with the error.
func (s *BudgetService) View(ctx context.Context, userID string, policy period.Policy) (BudgetView, error) {
	calc, err := period.GetCalculator(policy)
	if err != nil {
		return BudgetView{}, err
	}

	reset, resetErr := s.ResetStale(ctx, userID)
	if resetErr != nil && reset.Budgets == nil {
		return BudgetView{}, resetErr
	}

	txs, err := s.txs.FetchTransactions(ctx, userID)
	if err != nil {
		return BudgetView{}, store.Fail("fetch transactions", err)
	}

	return BudgetView{
		Budgets:  period.WithSpend(reset.Budgets, txs, calc, s.now()),
		Policy:   policy,
		ResetIDs: reset.ResetIDs,
		Durable:  reset.Durable,
	}, resetErr
}

// Replace validates and atomically stores the full budget list. Checkpoints
// belong to the reset policy: known ids keep the stored one whatever the
// caller sends, and new budgets get an id and a checkpoint at now.
func (s *BudgetService) Replace(ctx context.Context, userID string, budgets []core.Budget) ([]core.Budget, error) {
	if err := core.ValidateBudgets(budgets); err != nil {
		return nil, err
	}

	current, err := s.budgets.FetchBudgets(ctx, userID)
	if err != nil {
		return nil, store.Fail("fetch budgets", err)
	}
	known := make(map[string]core.Budget, len(current))
	for _, b := range current {
		known[b.ID] = b
	}

	now := s.now()
	next := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		if old, ok := known[b.ID]; ok && b.ID != "" {
			b.LastReset = old.LastReset
		} else {
			if b.ID == "" {
				b.ID = uuid.NewString()
			}
			b.LastReset = now
		}
		next[i] = b
	}

	if err := s.budgets.SaveBudgets(ctx, userID, next); err != nil {
		return nil, store.Fail("save budgets", err)
	}
	slog.InfoContext(ctx, "Budgets saved", "user_id", userID, "count", len(next))
	return next, nil
}

// Add appends a budget to the user's list.
func (s *BudgetService) Add(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	current, err := s.budgets.FetchBudgets(ctx, userID)
	if err != nil {
		return core.Budget{}, store.Fail("fetch budgets", err)
	}
	b.ID = ""
	saved, err := s.Replace(ctx, userID, append(current, b))
	if err != nil {
		return core.Budget{}, err
	}
	return saved[len(saved)-1], nil
}

// Update replaces the budget with the same id.
func (s *BudgetService) Update(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	current, err := s.budgets.FetchBudgets(ctx, userID)
	if err != nil {
		return core.Budget{}, store.Fail("fetch budgets", err)
	}
	idx := indexOf(current, b.ID)
	if idx < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", b.ID, store.ErrNotFound)
	}
	current[idx] = b
	saved, err := s.Replace(ctx, userID, current)
	if err != nil {
		return core.Budget{}, err
	}
	return saved[idx], nil
}

// Delete removes one budget.
func (s *BudgetService) Delete(ctx context.Context, userID, budgetID string) error {
	current, err := s.budgets.FetchBudgets(ctx, userID)
	if err != nil {
		return store.Fail("fetch budgets", err)
	}
	idx := indexOf(current, budgetID)
	if idx < 0 {
		return fmt.Errorf("budget %s: %w", budgetID, store.ErrNotFound)
	}
	_, err = s.Replace(ctx, userID, append(current[:idx:idx], current[idx+1:]...))
	return err
}

// SweepResets runs ResetStale for every known user. Failures are logged and
// collected; the sweep continues with the next user.
func (s *BudgetService) SweepResets(ctx context.Context, users store.UserLister) (int, error) {
	ids, err := users.ListUserIDs(ctx)
	if err != nil {
		return 0, store.Fail("list users", err)
	}

	var errs []error
	reset := 0
	for _, userID := range ids {
		if ctx.Err() != nil {
			return reset, ctx.Err()
		}
		res, err := s.ResetStale(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Budget reset failed", "user_id", userID, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		reset += len(res.ResetIDs)
	}
	return reset, errors.Join(errs...)
}

// loadOrSeed returns the user's budgets, storing the default list for users
// who have none.
func (s *BudgetService) loadOrSeed(ctx context.Context, userID string) ([]core.Budget, error) {
	current, err := s.budgets.FetchBudgets(ctx, userID)
	if err != nil {
		return nil, store.Fail("fetch budgets", err)
	}
	if len(current) > 0 {
		return current, nil
	}

	seeded := core.DefaultBudgets(s.now())
	for i := range seeded {
		seeded[i].ID = uuid.NewString()
	}
	if err := s.budgets.SaveBudgets(ctx, userID, seeded); err != nil {
		return nil, store.Fail("seed budgets", err)
	}
	slog.InfoContext(ctx, "Seeded default budgets", "user_id", userID, "count", len(seeded))
	return seeded, nil
}

func indexOf(budgets []core.Budget, id string) int {
	if id == "" {
		return -1
	}
	for i, b := range budgets {
		if b.ID == id {
			return i
		}
	}
	return -1
}
