package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the database representation of a ledger account.
// ParentAccountID is empty when the account is a root; the repository maps it
// to a NULL foreign key.
type Account struct {
	AccountID         string          `db:"account_id"`
	TenantID          string          `db:"tenant_id"`
	AccountCode       string          `db:"account_code"`
	AccountName       string          `db:"account_name"`
	AccountType       string          `db:"account_type"`
	ParentAccountID   string          `db:"parent_account_id"` // Nullable
	Description       string          `db:"description"`
	CurrencyCode      string          `db:"currency_code"`
	BankAccountNumber string          `db:"bank_account_number"`
	IsActive          bool            `db:"is_active"`
	IsSystemAccount   bool            `db:"is_system_account"`
	ShowOnDashboard   bool            `db:"show_on_dashboard"`
	OpeningBalance    decimal.Decimal `db:"opening_balance"`
	OpeningBalanceAs  string          `db:"opening_balance_type"`
	OpeningBalanceOn  *time.Time      `db:"opening_balance_date"` // Nullable
	CurrentBalance    decimal.Decimal `db:"current_balance"`
	AuditFields
}
