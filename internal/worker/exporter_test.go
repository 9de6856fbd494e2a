package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/amqp"
	"fortis/internal/core"
	sheetsmem "fortis/internal/sheets/memory"
)

type failingWriter struct{}

func (failingWriter) AppendWeeklyReport(context.Context, string, core.WeeklyReport) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestReportExporter_HandleWeeklyReport(t *testing.T) {
	end := time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	msg := amqp.NewWeeklyReportMessage("u1", core.WeeklyReport{
		Start:   end.AddDate(0, 0, -7),
		End:     end,
		Income:  decimal.NewFromInt(100),
		Expense: decimal.NewFromInt(40),
		Net:     decimal.NewFromInt(60),
	})

	writer := sheetsmem.New()
	require.NoError(t, NewReportExporter(writer).HandleWeeklyReport(context.Background(), msg))

	entries := writer.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.True(t, entries[0].Report.Net.Equal(decimal.NewFromInt(60)))

	err := NewReportExporter(failingWriter{}).HandleWeeklyReport(context.Background(), msg)
	assert.ErrorContains(t, err, "export weekly report: quota exceeded")
}
