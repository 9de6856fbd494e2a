package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortis/internal/core"
	"fortis/internal/shield"
)

// Routing keys for ledger events.
const (
	RouteBudgetReset    = "budget.reset"
	RouteVaultAllocated = "vault.allocated"
	RouteWeeklyReport   = "report.weekly"
)

// BudgetResetMessage announces that budget checkpoints advanced.
type BudgetResetMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BudgetIDs []string  `json:"budget_ids"`
	LastReset time.Time `json:"last_reset"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetResetMessage(userID string, budgetIDs []string, lastReset time.Time) *BudgetResetMessage {
	return &BudgetResetMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		BudgetIDs: budgetIDs,
		LastReset: lastReset,
		Timestamp: time.Now(),
	}
}

func (m *BudgetResetMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetResetMessageFromJSON(data []byte) (*BudgetResetMessage, error) {
	var msg BudgetResetMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AllocationEntry is one vault's share of a deposit.
type AllocationEntry struct {
	VaultID string          `json:"vault_id"`
	Amount  decimal.Decimal `json:"amount"`
	Capped  bool            `json:"capped"`
}

// VaultAllocatedMessage announces a committed deposit partition.
type VaultAllocatedMessage struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Deposit     decimal.Decimal   `json:"deposit"`
	Shielded    decimal.Decimal   `json:"shielded"`
	Spendable   decimal.Decimal   `json:"spendable"`
	Allocations []AllocationEntry `json:"allocations"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewVaultAllocatedMessage announces res. Callers pass the credited
// allocations, not the plan.
func NewVaultAllocatedMessage(userID string, res shield.Result) *VaultAllocatedMessage {
	entries := make([]AllocationEntry, len(res.Allocations))
	for i, a := range res.Allocations {
		entries[i] = AllocationEntry{VaultID: a.VaultID, Amount: a.Allocated, Capped: a.Capped}
	}
	return &VaultAllocatedMessage{
		ID:          uuid.NewString(),
		UserID:      userID,
		Deposit:     res.Deposit,
		Shielded:    res.ShieldedTotal,
		Spendable:   res.SpendableTotal,
		Allocations: entries,
		Timestamp:   time.Now(),
	}
}

func (m *VaultAllocatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func VaultAllocatedMessageFromJSON(data []byte) (*VaultAllocatedMessage, error) {
	var msg VaultAllocatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CategoryEntry is an expense total for one category.
type CategoryEntry struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ReportBody is the wire form of core.WeeklyReport.
type ReportBody struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
	ByCategory []CategoryEntry `json:"by_category"`
}

// WeeklyReportMessage carries a user's weekly report to the exporter.
type WeeklyReportMessage struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Report    ReportBody `json:"report"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewWeeklyReportMessage(userID string, r core.WeeklyReport) *WeeklyReportMessage {
	body := ReportBody{
		Start:      r.Start,
		End:        r.End,
		Income:     r.Income,
		Expense:    r.Expense,
		Net:        r.Net,
		ByCategory: make([]CategoryEntry, len(r.ByCategory)),
	}
	for i, c := range r.ByCategory {
		body.ByCategory[i] = CategoryEntry{Name: c.Name, Amount: c.Amount}
	}
	return &WeeklyReportMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Report:    body,
		Timestamp: time.Now(),
	}
}

// WeeklyReport converts the body back to the domain type.
func (m *WeeklyReportMessage) WeeklyReport() core.WeeklyReport {
	r := core.WeeklyReport{
		Start:   m.Report.Start,
		End:     m.Report.End,
		Income:  m.Report.Income,
		Expense: m.Report.Expense,
		Net:     m.Report.Net,
	}
	for _, c := range m.Report.ByCategory {
		r.ByCategory = append(r.ByCategory, core.CategoryAmount{Name: c.Name, Amount: c.Amount})
	}
	return r
}

func (m *WeeklyReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func WeeklyReportMessageFromJSON(data []byte) (*WeeklyReportMessage, error) {
	var msg WeeklyReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
