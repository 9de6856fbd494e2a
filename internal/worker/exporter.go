package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fortis/internal/amqp"
	"fortis/internal/sheets"
)

// ReportExporter writes weekly reports received over AMQP to a sheet.
type ReportExporter struct {
	writer sheets.ReportWriter
}

func NewReportExporter(writer sheets.ReportWriter) *ReportExporter {
	return &ReportExporter{writer: writer}
}

// HandleWeeklyReport processes a single weekly report message from AMQP.
// A returned error makes the consumer requeue the message.
func (e *ReportExporter) HandleWeeklyReport(ctx context.Context, msg *amqp.WeeklyReportMessage) error {
	slog.InfoContext(ctx, "Processing weekly report", "id", msg.ID, "user_id", msg.UserID)

	ref, err := e.writer.AppendWeeklyReport(ctx, msg.UserID, msg.WeeklyReport())
	if err != nil {
		return fmt.Errorf("export weekly report: %w", err)
	}

	slog.InfoContext(ctx, "Weekly report exported",
		"id", msg.ID,
		"user_id", msg.UserID,
		"sheets_ref", ref)
	return nil
}
