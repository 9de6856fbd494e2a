package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"fortis/internal/core"
	ports "fortis/internal/sheets"

	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// reportBase is the sheet name without year; the report's year is
	// prefixed when appending.
	reportBase string
}

var _ ports.ReportWriter = (*Client)(nil)

// Options configures the exporter. One of CredentialsJSON or CredentialsFile
// is required.
type Options struct {
	SpreadsheetID   string
	ReportSheet     string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.ReportSheet)
	if base == "" {
		base = "Weekly"
	}

	credentials, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	creds, err := goauth.CredentialsFromJSON(ctx, credentials, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID, "sheet", base)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, reportBase: base}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendWeeklyReport appends one summary row and one row per category to
// the "<year> <sheet>" tab and returns the updated range.
func (c *Client) AppendWeeklyReport(ctx context.Context, userID string, r core.WeeklyReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(userID) == "" {
		return "", core.ErrEmptyID
	}

	sheet := yearPrefixedName(c.reportBase, r.End.Year())
	rng := fmt.Sprintf("%s!A:G", sheet)
	vr := &gsheet.ValueRange{Values: reportRows(userID, r)}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append report to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// reportRows lays a report out as sheet rows:
//
//	start | end | user | category | income | expense | net
//
// The first row carries the totals under the "Total" category.
func reportRows(userID string, r core.WeeklyReport) [][]any {
	start := r.Start.Format(time.DateOnly)
	end := r.End.Format(time.DateOnly)

	rows := make([][]any, 0, len(r.ByCategory)+1)
	rows = append(rows, []any{
		start, end, userID, "Total",
		r.Income.StringFixed(2), r.Expense.StringFixed(2), r.Net.StringFixed(2),
	})
	for _, c := range r.ByCategory {
		rows = append(rows, []any{start, end, userID, c.Name, "", c.Amount.StringFixed(2), ""})
	}
	return rows
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
