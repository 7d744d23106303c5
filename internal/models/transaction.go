package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountTransaction is the database representation of a single ledger entry.
type AccountTransaction struct {
	TransactionID     string          `db:"transaction_id"`
	TransactionNumber string          `db:"transaction_number"`
	TenantID          string          `db:"tenant_id"`
	AccountID         string          `db:"account_id"`
	TransactionType   string          `db:"transaction_type"`
	TransactionSource string          `db:"transaction_source"`
	IsManualEntry     bool            `db:"is_manual_entry"`
	DebitAmount       decimal.Decimal `db:"debit_amount"`
	CreditAmount      decimal.Decimal `db:"credit_amount"`
	DebitOrCredit     string          `db:"debit_or_credit"`
	CurrencyCode      string          `db:"currency_code"`
	ExchangeRate      decimal.Decimal `db:"exchange_rate"`
	ContactID         string          `db:"contact_id"`
	Payee             string          `db:"payee"`
	ReferenceNumber   string          `db:"reference_number"`
	InvoiceID         *string         `db:"invoice_id"`
	EstimateID        *string         `db:"estimate_id"`
	SalesOrderID      *string         `db:"sales_order_id"`
	PaymentID         *string         `db:"payment_id"`
	TransactionDate   time.Time       `db:"transaction_date"`
	Description       string          `db:"description"`
	Status            string          `db:"transaction_status"`
	IsReversal        bool            `db:"is_reversal"`
	ReversalOfID      *string         `db:"reversal_of_id"`
	ReversedByID      *string         `db:"reversed_by_id"`
	PostedBy          string          `db:"posted_by"`
	PostedAt          *time.Time      `db:"posted_at"`
	AuditFields
}
