package sheets

import (
	"context"

	"fortis/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends a user's weekly report to an external sheet.
	ReportWriter interface {
		AppendWeeklyReport(ctx context.Context, userID string, r core.WeeklyReport) (rowRef string, err error)
	}
)
