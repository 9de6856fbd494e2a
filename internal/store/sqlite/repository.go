// Package sqlite persists ledger records in a local SQLite database.
// Amounts are stored as decimal strings and timestamps as unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/core"
	"fortis/internal/store"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps pooled writers from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) FetchTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date_ms, description, category, amount, type, archived
		FROM transactions WHERE user_id = ? ORDER BY date_ms DESC, id`, userID)
	if err != nil {
		return nil, store.Fail("fetch transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx       core.Transaction
			dateMs   int64
			amount   string
			typ      string
			archived bool
		)
		if err := rows.Scan(&tx.ID, &dateMs, &tx.Description, &tx.Category, &amount, &typ, &archived); err != nil {
			return nil, store.Fail("scan transaction", err)
		}
		tx.Date = fromMillis(dateMs)
		tx.Amount = parseStored(amount)
		tx.Type = core.TransactionType(typ)
		tx.Archived = archived
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Fail("fetch transactions", err)
	}
	return out, nil
}

func (r *Repository) AddTransaction(ctx context.Context, userID string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		return core.ErrEmptyID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, date_ms, description, category, amount, type, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Date.UnixMilli(), tx.Description, tx.Category, tx.Amount.String(), string(tx.Type), tx.Archived)
	if isPrimaryKeyViolation(err) {
		return fmt.Errorf("transaction %s: %w", tx.ID, store.ErrDuplicateID)
	}
	if err != nil {
		return store.Fail("add transaction", err)
	}
	slog.DebugContext(ctx, "Transaction stored", "user_id", userID, "transaction_id", tx.ID)
	return nil
}

func (r *Repository) SetArchived(ctx context.Context, userID, txID string, archived bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET archived = ? WHERE user_id = ? AND id = ?`, archived, userID, txID)
	if err != nil {
		return store.Fail("set archived", err)
	}
	return expectRow(res, "transaction", txID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, txID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, txID)
	if err != nil {
		return store.Fail("delete transaction", err)
	}
	return expectRow(res, "transaction", txID)
}

func (r *Repository) FetchBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, budgeted, color, last_reset_ms
		FROM budgets WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, store.Fail("fetch budgets", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b         core.Budget
			budgeted  string
			lastReset sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.Category, &budgeted, &b.Color, &lastReset); err != nil {
			return nil, store.Fail("scan budget", err)
		}
		b.Budgeted = parseStored(budgeted)
		if lastReset.Valid {
			b.LastReset = fromMillis(lastReset.Int64)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Fail("fetch budgets", err)
	}
	return out, nil
}

// SaveBudgets replaces the user's budgets inside one transaction.
func (r *Repository) SaveBudgets(ctx context.Context, userID string, budgets []core.Budget) error {
	for _, b := range budgets {
		if b.ID == "" {
			return fmt.Errorf("budget %q: %w", b.Category, core.ErrEmptyID)
		}
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ?`, userID); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO budgets (id, user_id, position, category, budgeted, color, last_reset_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, b := range budgets {
			if _, err := stmt.ExecContext(ctx, b.ID, userID, i, b.Category, b.Budgeted.String(), b.Color, toNullMillis(b.LastReset)); err != nil {
				return fmt.Errorf("insert budget %s: %w", b.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.Fail("save budgets", err)
	}
	slog.DebugContext(ctx, "Budgets replaced", "user_id", userID, "count", len(budgets))
	return nil
}

func (r *Repository) FetchVaults(ctx context.Context, userID string) ([]core.SavingsVault, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, monthly_target, current_balance, ceiling
		FROM vaults WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, store.Fail("fetch vaults", err)
	}
	defer rows.Close()

	var out []core.SavingsVault
	for rows.Next() {
		var (
			v               core.SavingsVault
			target, balance string
			ceiling         sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Name, &target, &balance, &ceiling); err != nil {
			return nil, store.Fail("scan vault", err)
		}
		v.MonthlyTarget = parseStored(target)
		v.CurrentBalance = parseStored(balance)
		if ceiling.Valid {
			c := parseStored(ceiling.String)
			v.Ceiling = &c
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Fail("fetch vaults", err)
	}
	return out, nil
}

// SaveVault inserts a vault at the end of the user's list or updates it in place.
func (r *Repository) SaveVault(ctx context.Context, userID string, v core.SavingsVault) error {
	if err := v.Validate(); err != nil {
		return err
	}
	var ceiling sql.NullString
	if v.Ceiling != nil {
		ceiling = sql.NullString{String: v.Ceiling.String(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaults (id, user_id, position, name, monthly_target, current_balance, ceiling)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM vaults WHERE user_id = ?), ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			name = excluded.name,
			monthly_target = excluded.monthly_target,
			current_balance = excluded.current_balance,
			ceiling = excluded.ceiling`,
		v.ID, userID, userID, v.Name, v.MonthlyTarget.String(), v.CurrentBalance.String(), ceiling)
	if err != nil {
		return store.Fail("save vault", err)
	}
	return nil
}

func (r *Repository) SaveVaultBalance(ctx context.Context, userID, vaultID string, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vaults SET current_balance = ? WHERE user_id = ? AND id = ?`, balance.String(), userID, vaultID)
	if err != nil {
		return store.Fail("save vault balance", err)
	}
	return expectRow(res, "vault", vaultID)
}

func (r *Repository) FetchAlertSettings(ctx context.Context, userID string) (core.AlertSettings, error) {
	s := core.DefaultAlertSettings()

	var large string
	err := r.db.QueryRowContext(ctx, `
		SELECT budget_warning_enabled, budget_warning_threshold, budget_exceeded_enabled,
		       large_transaction_enabled, large_transaction_amount, weekly_report_enabled
		FROM alert_settings WHERE user_id = ?`, userID).Scan(
		&s.BudgetWarningEnabled, &s.BudgetWarningThreshold, &s.BudgetExceededEnabled,
		&s.LargeTransactionEnabled, &large, &s.WeeklyReportEnabled)
	switch {
	case err == sql.ErrNoRows:
		return core.DefaultAlertSettings(), nil
	case err != nil:
		return s, store.Fail("fetch alert settings", err)
	}
	s.LargeTransactionAmount = parseStored(large)

	rows, err := r.db.QueryContext(ctx, `SELECT alert_id FROM dismissed_alerts WHERE user_id = ?`, userID)
	if err != nil {
		return s, store.Fail("fetch dismissed alerts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return s, store.Fail("scan dismissed alert", err)
		}
		s.DismissedAlertIDs[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return s, store.Fail("fetch dismissed alerts", err)
	}
	return s, nil
}

// SaveAlertSettings writes the settings row and the dismissed set together.
func (r *Repository) SaveAlertSettings(ctx context.Context, userID string, s core.AlertSettings) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO alert_settings (user_id, budget_warning_enabled, budget_warning_threshold,
				budget_exceeded_enabled, large_transaction_enabled, large_transaction_amount, weekly_report_enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				budget_warning_enabled = excluded.budget_warning_enabled,
				budget_warning_threshold = excluded.budget_warning_threshold,
				budget_exceeded_enabled = excluded.budget_exceeded_enabled,
				large_transaction_enabled = excluded.large_transaction_enabled,
				large_transaction_amount = excluded.large_transaction_amount,
				weekly_report_enabled = excluded.weekly_report_enabled`,
			userID, s.BudgetWarningEnabled, s.BudgetWarningThreshold, s.BudgetExceededEnabled,
			s.LargeTransactionEnabled, s.LargeTransactionAmount.String(), s.WeeklyReportEnabled)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM dismissed_alerts WHERE user_id = ?`, userID); err != nil {
			return err
		}
		for id := range s.DismissedAlertIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO dismissed_alerts (user_id, alert_id) VALUES (?, ?)`, userID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.Fail("save alert settings", err)
	}
	return nil
}

func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM transactions
		UNION SELECT user_id FROM budgets
		UNION SELECT user_id FROM vaults
		UNION SELECT user_id FROM alert_settings
		ORDER BY 1`)
	if err != nil {
		return nil, store.Fail("list users", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, store.Fail("scan user", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Fail("list users", err)
	}
	return out, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return store.Fail("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return nil
}

func isPrimaryKeyViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// parseStored reads an amount column. Corrupt values read as zero so a single
// bad row cannot break derived figures.
func parseStored(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func toNullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
