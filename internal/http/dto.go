package http

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fortis/internal/alerts"
	"fortis/internal/archive"
	"fortis/internal/core"
	"fortis/internal/services"
	"fortis/internal/shield"
)

type budgetJSON struct {
	ID        string           `json:"id,omitempty"`
	Category  string           `json:"category"`
	Budgeted  decimal.Decimal  `json:"budgeted"`
	Color     string           `json:"color,omitempty"`
	LastReset *time.Time       `json:"last_reset,omitempty"`
	Spent     *decimal.Decimal `json:"spent,omitempty"`
}

// toDomain ignores last_reset and spent: both are derived server side and
// only ever written out.
func (b budgetJSON) toDomain() core.Budget {
	return core.Budget{
		ID:       sanitizeInput(b.ID),
		Category: sanitizeInput(b.Category),
		Budgeted: b.Budgeted,
		Color:    sanitizeInput(b.Color),
	}
}

func budgetFromDomain(b core.Budget) budgetJSON {
	out := budgetJSON{ID: b.ID, Category: b.Category, Budgeted: b.Budgeted, Color: b.Color}
	if !b.LastReset.IsZero() {
		t := b.LastReset
		out.LastReset = &t
	}
	return out
}

type budgetListRequest struct {
	Budgets []budgetJSON `json:"budgets"`
}

type budgetViewJSON struct {
	Budgets  []budgetJSON `json:"budgets"`
	Policy   string       `json:"policy"`
	ResetIDs []string     `json:"reset_ids"`
	Durable  bool         `json:"durable"`
	Error    string       `json:"error,omitempty"`
}

func budgetViewFromDomain(v services.BudgetView, err error) budgetViewJSON {
	out := budgetViewJSON{
		Budgets:  make([]budgetJSON, len(v.Budgets)),
		Policy:   string(v.Policy),
		ResetIDs: nonNil(v.ResetIDs),
		Durable:  v.Durable,
		Error:    errString(err),
	}
	for i, b := range v.Budgets {
		out.Budgets[i] = budgetFromDomain(b.Budget)
		spent := b.Spent
		out.Budgets[i].Spent = &spent
	}
	return out
}

type resetJSON struct {
	Budgets  []budgetJSON `json:"budgets"`
	ResetIDs []string     `json:"reset_ids"`
	Durable  bool         `json:"durable"`
	Error    string       `json:"error,omitempty"`
}

func resetFromDomain(res services.ResetResult, err error) resetJSON {
	out := resetJSON{
		Budgets:  make([]budgetJSON, len(res.Budgets)),
		ResetIDs: nonNil(res.ResetIDs),
		Durable:  res.Durable,
		Error:    errString(err),
	}
	for i, b := range res.Budgets {
		out.Budgets[i] = budgetFromDomain(b)
	}
	return out
}

type alertJSON struct {
	ID          string    `json:"id"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Dismissed   bool      `json:"dismissed"`
}

type feedJSON struct {
	Alerts  []alertJSON `json:"alerts"`
	Unread  int         `json:"unread"`
	Durable bool        `json:"durable"`
	Error   string      `json:"error,omitempty"`
}

func feedFromDomain(f alerts.Feed, durable bool, err error) feedJSON {
	out := feedJSON{
		Alerts:  make([]alertJSON, len(f.Items)),
		Unread:  f.Unread,
		Durable: durable,
		Error:   errString(err),
	}
	for i, it := range f.Items {
		out.Alerts[i] = alertJSON{
			ID:          it.ID,
			Severity:    string(it.Severity),
			Title:       it.Title,
			Description: it.Description,
			Timestamp:   it.Timestamp,
			Dismissed:   it.Dismissed,
		}
	}
	return out
}

type settingsJSON struct {
	BudgetWarningEnabled    bool            `json:"budget_warning_enabled"`
	BudgetWarningThreshold  int             `json:"budget_warning_threshold"`
	BudgetExceededEnabled   bool            `json:"budget_exceeded_enabled"`
	LargeTransactionEnabled bool            `json:"large_transaction_enabled"`
	LargeTransactionAmount  decimal.Decimal `json:"large_transaction_amount"`
	WeeklyReportEnabled     bool            `json:"weekly_report_enabled"`
	// Read only; dismissals change through the alert endpoints.
	DismissedAlertIDs []string `json:"dismissed_alert_ids,omitempty"`
}

func (s settingsJSON) toDomain() core.AlertSettings {
	return core.AlertSettings{
		BudgetWarningEnabled:    s.BudgetWarningEnabled,
		BudgetWarningThreshold:  s.BudgetWarningThreshold,
		BudgetExceededEnabled:   s.BudgetExceededEnabled,
		LargeTransactionEnabled: s.LargeTransactionEnabled,
		LargeTransactionAmount:  s.LargeTransactionAmount,
		WeeklyReportEnabled:     s.WeeklyReportEnabled,
	}
}

func settingsFromDomain(s core.AlertSettings) settingsJSON {
	ids := make([]string, 0, len(s.DismissedAlertIDs))
	for id := range s.DismissedAlertIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return settingsJSON{
		BudgetWarningEnabled:    s.BudgetWarningEnabled,
		BudgetWarningThreshold:  s.BudgetWarningThreshold,
		BudgetExceededEnabled:   s.BudgetExceededEnabled,
		LargeTransactionEnabled: s.LargeTransactionEnabled,
		LargeTransactionAmount:  s.LargeTransactionAmount,
		WeeklyReportEnabled:     s.WeeklyReportEnabled,
		DismissedAlertIDs:       ids,
	}
}

type vaultJSON struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name"`
	MonthlyTarget  decimal.Decimal  `json:"monthly_target"`
	CurrentBalance decimal.Decimal  `json:"current_balance"`
	Ceiling        *decimal.Decimal `json:"ceiling,omitempty"`
}

func (v vaultJSON) toDomain() core.SavingsVault {
	return core.SavingsVault{
		ID:             sanitizeInput(v.ID),
		Name:           sanitizeInput(v.Name),
		MonthlyTarget:  v.MonthlyTarget,
		CurrentBalance: v.CurrentBalance,
		Ceiling:        v.Ceiling,
	}
}

func vaultFromDomain(v core.SavingsVault) vaultJSON {
	return vaultJSON{
		ID:             v.ID,
		Name:           v.Name,
		MonthlyTarget:  v.MonthlyTarget,
		CurrentBalance: v.CurrentBalance,
		Ceiling:        v.Ceiling,
	}
}

type depositRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	VaultIDs []string        `json:"vault_ids,omitempty"`
	Preview  bool            `json:"preview,omitempty"`
}

type allocationJSON struct {
	VaultID   string          `json:"vault_id"`
	Allocated decimal.Decimal `json:"allocated"`
	Capped    bool            `json:"capped"`
}

func allocationsFromDomain(in []shield.Allocation) []allocationJSON {
	out := make([]allocationJSON, len(in))
	for i, a := range in {
		out[i] = allocationJSON{VaultID: a.VaultID, Allocated: a.Allocated, Capped: a.Capped}
	}
	return out
}

type depositJSON struct {
	Deposit        decimal.Decimal  `json:"deposit"`
	ShieldedTotal  decimal.Decimal  `json:"shielded_total"`
	SpendableTotal decimal.Decimal  `json:"spendable_total"`
	Overcommitted  bool             `json:"overcommitted"`
	Allocations    []allocationJSON `json:"allocations"`
	Applied        []allocationJSON `json:"applied"`
	Skipped        []string         `json:"skipped"`
	Failed         []string         `json:"failed"`
	Durable        bool             `json:"durable"`
	Error          string           `json:"error,omitempty"`
}

func depositFromDomain(res services.DepositResult, err error) depositJSON {
	return depositJSON{
		Deposit:        res.Deposit,
		ShieldedTotal:  res.ShieldedTotal,
		SpendableTotal: res.SpendableTotal,
		Overcommitted:  res.Overcommitted,
		Allocations:    allocationsFromDomain(res.Allocations),
		Applied:        allocationsFromDomain(res.Applied),
		Skipped:        nonNil(res.Skipped),
		Failed:         nonNil(res.Failed),
		Durable:        res.Durable,
		Error:          errString(err),
	}
}

type autofillJSON struct {
	Allocations []allocationJSON `json:"allocations"`
	Remaining   decimal.Decimal  `json:"remaining"`
}

type transactionRequest struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
}

func (t transactionRequest) toDomain() (core.Transaction, error) {
	date, err := ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          sanitizeInput(t.ID),
		Date:        date,
		Description: sanitizeInput(t.Description),
		Category:    sanitizeInput(t.Category),
		Amount:      t.Amount,
		Type:        core.TransactionType(sanitizeInput(t.Type)),
	}, nil
}

type transactionJSON struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Archived    bool            `json:"archived"`
}

func transactionFromDomain(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Date:        tx.Date,
		Description: tx.Description,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Archived:    tx.Archived,
	}
}

func transactionsFromDomain(in []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(in))
	for i, tx := range in {
		out[i] = transactionFromDomain(tx)
	}
	return out
}

type listingJSON struct {
	Active          []transactionJSON `json:"active"`
	ArchiveEligible []transactionJSON `json:"archive_eligible"`
	Archived        []transactionJSON `json:"archived"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type failureJSON struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type bulkJSON struct {
	Applied  []string      `json:"applied"`
	Skipped  []string      `json:"skipped"`
	Failed   []failureJSON `json:"failed"`
	Complete bool          `json:"complete"`
	Error    string        `json:"error,omitempty"`
}

func bulkFromDomain(res archive.BulkResult, err error) bulkJSON {
	out := bulkJSON{
		Applied:  nonNil(res.Applied),
		Skipped:  nonNil(res.Skipped),
		Failed:   make([]failureJSON, len(res.Failed)),
		Complete: res.Complete(),
		Error:    errString(err),
	}
	for i, f := range res.Failed {
		out.Failed[i] = failureJSON{ID: f.ID, Error: errString(f.Err)}
	}
	return out
}

type categoryJSON struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type weeklyJSON struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
	ByCategory []categoryJSON  `json:"by_category"`
}

func weeklyFromDomain(r core.WeeklyReport) weeklyJSON {
	out := weeklyJSON{
		Start:      r.Start,
		End:        r.End,
		Income:     r.Income,
		Expense:    r.Expense,
		Net:        r.Net,
		ByCategory: make([]categoryJSON, len(r.ByCategory)),
	}
	for i, c := range r.ByCategory {
		out.ByCategory[i] = categoryJSON{Name: c.Name, Amount: c.Amount}
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
