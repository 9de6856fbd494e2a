package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Danger  Severity = "danger"
	Warning Severity = "warning"
	Info    Severity = "info"
	Success Severity = "success"
)

// Alert settings bounds.
const (
	MinWarningThreshold    = 50
	MaxWarningThreshold    = 95
	MinLargeTransactionAmt = 100
)

type (
	TransactionType string

	Severity string

	Transaction struct {
		ID          string
		Date        time.Time
		Description string
		Category    string
		Amount      decimal.Decimal
		Type        TransactionType
		Archived    bool
	}

	// Budget is one spending category. Spend is never stored here; it is
	// derived from the transaction log by the period package.
	Budget struct {
		ID        string
		Category  string
		Budgeted  decimal.Decimal
		Color     string
		LastReset time.Time
	}

	// BudgetWithSpend pairs a budget with its derived spend-to-date.
	BudgetWithSpend struct {
		Budget
		Spent decimal.Decimal
	}

	SavingsVault struct {
		ID             string
		Name           string
		MonthlyTarget  decimal.Decimal
		CurrentBalance decimal.Decimal
		Ceiling        *decimal.Decimal // nil means unbounded
	}

	AlertSettings struct {
		BudgetWarningEnabled    bool
		BudgetWarningThreshold  int
		BudgetExceededEnabled   bool
		LargeTransactionEnabled bool
		LargeTransactionAmount  decimal.Decimal
		WeeklyReportEnabled     bool
		DismissedAlertIDs       map[string]struct{}
	}

	// AlertItem is regenerated on every evaluation and never persisted.
	AlertItem struct {
		ID          string
		Severity    Severity
		Title       string
		Description string
		Timestamp   time.Time
		Dismissed   bool
	}
)

var (
	ErrNegativeAmount         = errors.New("amount must not be negative")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrEmptyCategory          = errors.New("empty category")
	ErrEmptyDescription       = errors.New("empty description")
	ErrEmptyID                = errors.New("empty id")
	ErrEmptyName              = errors.New("empty name")
	ErrZeroDate               = errors.New("date cannot be zero")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrThresholdRange         = errors.New("warning threshold must be between 50 and 95")
	ErrLargeAmountTooLow      = errors.New("large transaction amount must be at least 100")
	ErrDuplicateCategory      = errors.New("duplicate budget category")
	ErrColorInUse             = errors.New("color already used by another budget")
	ErrNegativeCeiling        = errors.New("ceiling must not be negative")
	ErrDescriptionTooLong     = errors.New("description too long (max 200 characters)")
)

var validationErrors = []error{
	ErrNegativeAmount, ErrInvalidAmount, ErrEmptyCategory, ErrEmptyDescription,
	ErrEmptyID, ErrEmptyName, ErrZeroDate, ErrInvalidTransactionType,
	ErrThresholdRange, ErrLargeAmountTooLow, ErrDuplicateCategory,
	ErrColorInUse, ErrNegativeCeiling, ErrDescriptionTooLong,
}

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	return nil
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Budgeted.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// SameCategory compares categories case-insensitively.
func SameCategory(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidateBudgets checks each budget and the per-user uniqueness rules:
// categories are unique case-insensitively and no two budgets share a color.
func ValidateBudgets(budgets []Budget) error {
	seenCategory := make(map[string]struct{}, len(budgets))
	seenColor := make(map[string]struct{}, len(budgets))
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			return err
		}
		key := strings.ToLower(strings.TrimSpace(b.Category))
		if _, ok := seenCategory[key]; ok {
			return ErrDuplicateCategory
		}
		seenCategory[key] = struct{}{}

		if b.Color == "" {
			continue
		}
		color := strings.ToLower(b.Color)
		if _, ok := seenColor[color]; ok {
			return ErrColorInUse
		}
		seenColor[color] = struct{}{}
	}
	return nil
}

func (v SavingsVault) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(v.Name) == "" {
		return ErrEmptyName
	}
	if v.MonthlyTarget.IsNegative() || v.CurrentBalance.IsNegative() {
		return ErrNegativeAmount
	}
	if v.Ceiling != nil && v.Ceiling.IsNegative() {
		return ErrNegativeCeiling
	}
	return nil
}

func (s AlertSettings) Validate() error {
	if s.BudgetWarningThreshold < MinWarningThreshold || s.BudgetWarningThreshold > MaxWarningThreshold {
		return ErrThresholdRange
	}
	if s.LargeTransactionAmount.LessThan(decimal.NewFromInt(MinLargeTransactionAmt)) {
		return ErrLargeAmountTooLow
	}
	return nil
}

// IsDismissed reports whether the alert id is in the dismissed set.
func (s AlertSettings) IsDismissed(id string) bool {
	_, ok := s.DismissedAlertIDs[id]
	return ok
}

// Clone returns a copy whose dismissed set can be mutated independently.
func (s AlertSettings) Clone() AlertSettings {
	out := s
	out.DismissedAlertIDs = make(map[string]struct{}, len(s.DismissedAlertIDs))
	for id := range s.DismissedAlertIDs {
		out.DismissedAlertIDs[id] = struct{}{}
	}
	return out
}

// DefaultAlertSettings are applied to users who never saved settings.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		BudgetWarningEnabled:    true,
		BudgetWarningThreshold:  80,
		BudgetExceededEnabled:   true,
		LargeTransactionEnabled: true,
		LargeTransactionAmount:  decimal.NewFromInt(500),
		WeeklyReportEnabled:     false,
		DismissedAlertIDs:       map[string]struct{}{},
	}
}
