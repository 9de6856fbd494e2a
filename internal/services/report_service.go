package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fortis/internal/amqp"
	"fortis/internal/core"
	"fortis/internal/report"
	"fortis/internal/store"
)

// ReportService builds and publishes weekly spending reports.
type ReportService struct {
	txs      store.TransactionStore
	settings store.SettingsStore
	events   EventPublisher
	now      Clock
}

func NewReportService(txs store.TransactionStore, settings store.SettingsStore, events EventPublisher) *ReportService {
	return &ReportService{txs: txs, settings: settings, events: events, now: time.Now}
}

// Weekly returns the report for the seven days ending now.
func (s *ReportService) Weekly(ctx context.Context, userID string) (core.WeeklyReport, error) {
	txs, err := s.txs.FetchTransactions(ctx, userID)
	if err != nil {
		return core.WeeklyReport{}, store.Fail("fetch transactions", err)
	}
	return report.Weekly(txs, s.now()), nil
}

// PublishWeekly publishes a report for every user who enabled weekly reports
// and returns how many were sent.
func (s *ReportService) PublishWeekly(ctx context.Context, users store.UserLister) (int, error) {
	if s.events == nil {
		return 0, errors.New("no event publisher configured")
	}
	ids, err := users.ListUserIDs(ctx)
	if err != nil {
		return 0, store.Fail("list users", err)
	}

	sent := 0
	var errs []error
	for _, userID := range ids {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		settings, err := s.settings.FetchAlertSettings(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, store.Fail("fetch alert settings", err)))
			continue
		}
		if !settings.WeeklyReportEnabled {
			continue
		}
		r, err := s.Weekly(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		if err := s.events.PublishWeeklyReport(ctx, amqp.NewWeeklyReportMessage(userID, r)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish weekly report", "user_id", userID, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
