package google

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/core"
)

func TestNew_Validation(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Options{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())

	_, err = New(context.Background(), Options{SpreadsheetID: "sheet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = New(context.Background(), Options{SpreadsheetID: "sheet", CredentialsFile: "/does/not/exist.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")

	_, err = New(context.Background(), Options{SpreadsheetID: "sheet", CredentialsJSON: "{not json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse service account credentials")
}

func TestAppendWeeklyReport_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", reportBase: "Weekly"}
	_, err := c.AppendWeeklyReport(context.Background(), "u1", core.WeeklyReport{})
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestReportRows(t *testing.T) {
	end := time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	r := core.WeeklyReport{
		Start:   end.AddDate(0, 0, -7),
		End:     end,
		Income:  decimal.NewFromInt(1000),
		Expense: decimal.RequireFromString("62.5"),
		Net:     decimal.RequireFromString("937.5"),
		ByCategory: []core.CategoryAmount{
			{Name: "Food", Amount: decimal.NewFromInt(40)},
			{Name: "Transport", Amount: decimal.RequireFromString("22.5")},
		},
	}

	rows := reportRows("u1", r)

	require.Len(t, rows, 3)
	assert.Equal(t, []any{"2025-04-07", "2025-04-14", "u1", "Total", "1000.00", "62.50", "937.50"}, rows[0])
	assert.Equal(t, []any{"2025-04-07", "2025-04-14", "u1", "Food", "", "40.00", ""}, rows[1])
	assert.Equal(t, "Transport", rows[2][3])
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Weekly", "2025 Weekly"},
		{" Weekly ", "2025 Weekly"},
		{"2024 Weekly", "2024 Weekly"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, yearPrefixedName(tt.base, 2025))
		})
	}
}
