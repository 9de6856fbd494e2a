package services

import (
	"context"
	"log/slog"
	"time"

	"fortis/internal/alerts"
	"fortis/internal/core"
	flog "fortis/internal/log"
	"fortis/internal/period"
	"fortis/internal/store"
)

// AlertService builds alert feeds and applies user dismissals.
type AlertService struct {
	budgets  *BudgetService
	txs      store.TransactionStore
	settings store.SettingsStore
	seen     *alerts.SeenTracker
	policy   period.Policy
	now      Clock
}

// NewAlertService wires the service. seen may be nil, which disables unread
// tracking across requests.
func NewAlertService(budgets *BudgetService, txs store.TransactionStore, settings store.SettingsStore, seen *alerts.SeenTracker) *AlertService {
	return &AlertService{
		budgets:  budgets,
		txs:      txs,
		settings: settings,
		seen:     seen,
		policy:   period.Rolling,
		now:      time.Now,
	}
}

// FeedResult is a feed plus whether the budget state behind it was durable.
type FeedResult struct {
	alerts.Feed
	Durable bool
}

// Feed evaluates every alert rule for the user. session scopes the unread
// count; an empty session counts everything not dismissed as unread.
func (s *AlertService) Feed(ctx context.Context, userID, session string) (FeedResult, error) {
	items, _, durable, err := s.evaluate(ctx, userID)
	if items == nil {
		return FeedResult{}, err
	}

	var seen map[string]struct{}
	if s.seen != nil {
		seen = s.seen.Seen(sessionKey(userID, session))
	}
	return FeedResult{Feed: alerts.BuildFeed(items, seen), Durable: durable}, err
}

// MarkSeen marks the user's current alerts as seen for session.
func (s *AlertService) MarkSeen(ctx context.Context, userID, session string) error {
	if s.seen == nil || session == "" {
		return nil
	}
	items, _, _, err := s.evaluate(ctx, userID)
	if items == nil {
		return err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	s.seen.MarkSeen(sessionKey(userID, session), ids...)
	return nil
}

// Dismiss adds one alert id to the user's dismissed set.
func (s *AlertService) Dismiss(ctx context.Context, userID, alertID string) (core.AlertSettings, error) {
	current, err := s.settings.FetchAlertSettings(ctx, userID)
	if err != nil {
		return core.AlertSettings{}, store.Fail("fetch alert settings", err)
	}
	next, err := alerts.Dismiss(current, alertID)
	if err != nil {
		return current, err
	}
	if err := s.settings.SaveAlertSettings(ctx, userID, next); err != nil {
		return current, store.Fail("save alert settings", err)
	}
	slog.InfoContext(ctx, "Alert dismissed", flog.NewFields().WithUser(userID).WithAlert(alertID).ToSlice()...)
	return next, nil
}

// DismissAll dismisses every alert currently in the user's feed.
func (s *AlertService) DismissAll(ctx context.Context, userID string) (core.AlertSettings, error) {
	items, current, _, err := s.evaluate(ctx, userID)
	if items == nil {
		return core.AlertSettings{}, err
	}
	next := alerts.DismissAll(current, items)
	if err := s.settings.SaveAlertSettings(ctx, userID, next); err != nil {
		return current, store.Fail("save alert settings", err)
	}
	return next, nil
}

// ClearDismissed empties the user's dismissed set.
func (s *AlertService) ClearDismissed(ctx context.Context, userID string) (core.AlertSettings, error) {
	current, err := s.settings.FetchAlertSettings(ctx, userID)
	if err != nil {
		return core.AlertSettings{}, store.Fail("fetch alert settings", err)
	}
	next := alerts.ClearDismissed(current)
	if err := s.settings.SaveAlertSettings(ctx, userID, next); err != nil {
		return current, store.Fail("save alert settings", err)
	}
	return next, nil
}

// Settings returns the user's alert settings, defaults when never saved.
func (s *AlertService) Settings(ctx context.Context, userID string) (core.AlertSettings, error) {
	settings, err := s.settings.FetchAlertSettings(ctx, userID)
	if err != nil {
		return core.AlertSettings{}, store.Fail("fetch alert settings", err)
	}
	return settings, nil
}

// UpdateSettings validates and stores the rule settings. The dismissed set is
// kept as stored.
func (s *AlertService) UpdateSettings(ctx context.Context, userID string, next core.AlertSettings) (core.AlertSettings, error) {
	if err := next.Validate(); err != nil {
		return core.AlertSettings{}, err
	}
	current, err := s.settings.FetchAlertSettings(ctx, userID)
	if err != nil {
		return core.AlertSettings{}, store.Fail("fetch alert settings", err)
	}
	next.DismissedAlertIDs = current.Clone().DismissedAlertIDs
	if err := s.settings.SaveAlertSettings(ctx, userID, next); err != nil {
		return current, store.Fail("save alert settings", err)
	}
	return next, nil
}

// evaluate returns nil items only when nothing could be computed. A failed
// reset write still yields items built from the old checkpoints, with durable
// false and the error.
func (s *AlertService) evaluate(ctx context.Context, userID string) ([]core.AlertItem, core.AlertSettings, bool, error) {
	calc, err := period.GetCalculator(s.policy)
	if err != nil {
		return nil, core.AlertSettings{}, false, err
	}

	reset, resetErr := s.budgets.ResetStale(ctx, userID)
	if reset.Budgets == nil && resetErr != nil {
		return nil, core.AlertSettings{}, false, resetErr
	}

	snap, err := (&Loader{Transactions: s.txs, Settings: s.settings}).Load(ctx, userID)
	if err != nil {
		return nil, core.AlertSettings{}, false, err
	}

	now := s.now()
	budgets := period.WithSpend(reset.Budgets, snap.Transactions, calc, now)
	return alerts.Generate(budgets, snap.Transactions, snap.Settings, now), snap.Settings, reset.Durable, resetErr
}

func sessionKey(userID, session string) string {
	if session == "" {
		return ""
	}
	return userID + "/" + session
}
